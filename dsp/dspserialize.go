package dsp

import (
	"encoding/binary"
	"io"
)

func (file *File) Serialize(out io.Writer) error {
	err := binary.Write(out, binary.BigEndian, &file.Header)

	if err != nil {
		return err
	}

	_, err = out.Write(file.Data)
	return err
}
