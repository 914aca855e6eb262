package main

import (
	"fmt"
	"strconv"
	"strings"
)

type ArgParameter interface {
	Names() []string
	ArgCount() int
	HelpMessage() string
	ValidateAndParse(usedName string, args []string) (any, error)
	DefaultValue() any
}

func NewArgs(defaultUsageExample string) Args {
	return Args{
		defaultUsageExample: defaultUsageExample,
		flagNameToArg:       make(map[string]ArgParameter),
	}
}

type Args struct {
	args                []ArgParameter
	defaultUsageExample string
	flagNameToArg       map[string]ArgParameter
}

// ParsedArgs holds every named value, defaults included, under each of its
// names.
type ParsedArgs struct {
	named      map[string]any
	Positional []string
}

func (parsed *ParsedArgs) String(name string) string {
	value, _ := parsed.named[name].(string)
	return value
}

func (parsed *ParsedArgs) Int(name string) int {
	value, _ := parsed.named[name].(int64)
	return int(value)
}

func (parsed *ParsedArgs) Flag(name string) bool {
	value, _ := parsed.named[name].(bool)
	return value
}

func (args *Args) addArg(arg ArgParameter) {
	args.args = append(args.args, arg)
	for _, name := range arg.Names() {
		args.flagNameToArg[name] = arg
	}
}

func (args *Args) AddStringArg(names []string, helpMessage string, defaultValue string) {
	args.addArg(&stringArg{names: names, helpMessage: helpMessage, defaultValue: defaultValue})
}

func (args *Args) AddIntegerArg(names []string, helpMessage string, defaultValue int64, minValue int64, maxValue int64) {
	args.addArg(&integerArg{
		names:        names,
		helpMessage:  helpMessage,
		minValue:     minValue,
		maxValue:     maxValue,
		defaultValue: defaultValue,
	})
}

func (args *Args) AddFlagArg(names []string, helpMessage string) {
	args.addArg(&flagArg{names: names, helpMessage: helpMessage})
}

func (args *Args) CreateHelpMessage() string {
	var result = []string{args.defaultUsageExample}

	result = append(result, "")

	for _, arg := range args.args {
		result = append(result, fmt.Sprintf("    %s %s", strings.Join(arg.Names(), ", "), arg.HelpMessage()))
	}

	return strings.Join(result, "\n")
}

func (args *Args) Parse(stringArgs []string) (*ParsedArgs, []error) {
	var result = &ParsedArgs{named: make(map[string]any)}
	var errs []error = nil

	for index := 0; index < len(stringArgs); {
		var current = stringArgs[index]
		index++

		argParam, ok := args.flagNameToArg[current]

		if ok {
			var maxActualArgs = len(stringArgs) - index
			if maxActualArgs >= argParam.ArgCount() {
				value, err := argParam.ValidateAndParse(current, stringArgs[index:index+argParam.ArgCount()])

				if err != nil {
					errs = append(errs, err)
				} else {
					for _, name := range argParam.Names() {
						result.named[name] = value
					}
				}

				index += argParam.ArgCount()
			} else {
				errs = append(errs, fmt.Errorf("%s expects %d args, got %d", current, argParam.ArgCount(), maxActualArgs))
			}
		} else if len(current) > 1 && current[0] == '-' {
			errs = append(errs, fmt.Errorf("Unknown parameter %s", current))
		} else {
			result.Positional = append(result.Positional, current)
		}
	}

	for name, arg := range args.flagNameToArg {
		if _, has := result.named[name]; !has {
			result.named[name] = arg.DefaultValue()
		}
	}

	return result, errs
}

type stringArg struct {
	names        []string
	helpMessage  string
	defaultValue string
}

func (arg *stringArg) Names() []string {
	return arg.names
}

func (arg *stringArg) ArgCount() int {
	return 1
}

func (arg *stringArg) HelpMessage() string {
	return arg.helpMessage
}

func (arg *stringArg) ValidateAndParse(usedName string, args []string) (any, error) {
	return args[0], nil
}

func (arg *stringArg) DefaultValue() any {
	return arg.defaultValue
}

type integerArg struct {
	names        []string
	helpMessage  string
	minValue     int64
	maxValue     int64
	defaultValue int64
}

func (arg *integerArg) Names() []string {
	return arg.names
}

func (arg *integerArg) ArgCount() int {
	return 1
}

func (arg *integerArg) HelpMessage() string {
	return arg.helpMessage
}

func (arg *integerArg) ValidateAndParse(usedName string, args []string) (any, error) {
	asInt, err := strconv.ParseInt(args[0], 10, 64)

	if err != nil || asInt < arg.minValue || asInt > arg.maxValue {
		return nil, fmt.Errorf("%s should be an integer in the range [%d, %d]", usedName, arg.minValue, arg.maxValue)
	}

	return asInt, nil
}

func (arg *integerArg) DefaultValue() any {
	return arg.defaultValue
}

type flagArg struct {
	names       []string
	helpMessage string
}

func (arg *flagArg) Names() []string {
	return arg.names
}

func (arg *flagArg) ArgCount() int {
	return 0
}

func (arg *flagArg) HelpMessage() string {
	return arg.helpMessage
}

func (arg *flagArg) ValidateAndParse(usedName string, args []string) (any, error) {
	return true, nil
}

func (arg *flagArg) DefaultValue() any {
	return false
}
