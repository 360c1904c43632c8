package common

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of the fixed frame header
const HeaderSize = 8

// MaxBuf1Size is the largest secondary buffer a frame can carry
const MaxBuf1Size = 255

// Command is the unit exchanged with the server in both directions.
//
// The 16 bit argument is split into Arg1 (high byte) and Arg2 (low byte).
// Buf1 holds at most 255 bytes, anything longer is cut off by Serialize.
type Command struct {
	Cmd  Opcode
	Arg1 uint8
	Arg2 uint8
	Buf  []byte
	Buf1 []byte
}

// NewCommand creates a command with the two argument bytes set separately
func NewCommand(cmd Opcode, arg1, arg2 int, buf, buf1 []byte) *Command {
	return &Command{
		Cmd:  cmd,
		Arg1: uint8(arg1),
		Arg2: uint8(arg2),
		Buf:  buf,
		Buf1: buf1,
	}
}

// NewCommandArg creates a command carrying a 16 bit argument
func NewCommandArg(cmd Opcode, arg int, buf, buf1 []byte) *Command {
	c := &Command{Cmd: cmd, Buf: buf, Buf1: buf1}
	c.SetArg(arg)
	return c
}

// Arg returns the combined 16 bit argument
func (c *Command) Arg() int {
	return int(c.Arg1)<<8 | int(c.Arg2)
}

// SetArg splits a 16 bit argument into Arg1 and Arg2
func (c *Command) SetArg(arg int) {
	c.Arg1 = uint8(arg >> 8)
	c.Arg2 = uint8(arg)
}

// SizeBytes returns the exact number of bytes Serialize produces
func (c *Command) SizeBytes() int {
	return HeaderSize + len(c.Buf) + c.buf1Len()
}

// Serialize encodes the command into its wire format:
// 1 byte opcode,
// 1 byte arg1,
// 1 byte arg2,
// 1 byte length of buf1,
// 4 bytes length of buf (little endian),
// N bytes buf,
// M bytes buf1 (M <= 255)
func (c *Command) Serialize() []byte {
	return c.AppendTo(make([]byte, 0, c.SizeBytes()))
}

// AppendTo appends the wire format of the command to dst
func (c *Command) AppendTo(dst []byte) []byte {
	blen1 := c.buf1Len()
	var header [HeaderSize]byte
	header[0] = byte(c.Cmd)
	header[1] = c.Arg1
	header[2] = c.Arg2
	header[3] = byte(blen1)
	binary.LittleEndian.PutUint32(header[4:], uint32(len(c.Buf)))

	dst = append(dst, header[:]...)
	dst = append(dst, c.Buf...)
	return append(dst, c.Buf1[:blen1]...)
}

// Deserialize decodes one command from the start of data and returns the
// number of bytes consumed.
func (c *Command) Deserialize(data []byte) (int, error) {
	if len(data) < HeaderSize {
		return 0, fmt.Errorf("data too short for command header")
	}
	blen, blen1 := c.SetHeader(data[:HeaderSize])
	total := HeaderSize + blen + blen1
	if len(data) < total {
		return 0, fmt.Errorf("data too short for command of %d bytes", total)
	}
	c.Buf = append([]byte(nil), data[HeaderSize:HeaderSize+blen]...)
	c.Buf1 = append([]byte(nil), data[HeaderSize+blen:total]...)
	return total, nil
}

// SetHeader fills opcode and arguments from a frame header and returns the
// lengths of buf and buf1 that follow it.
func (c *Command) SetHeader(header []byte) (blen int, blen1 int) {
	c.Cmd = Opcode(header[0])
	c.Arg1 = header[1]
	c.Arg2 = header[2]
	return int(binary.LittleEndian.Uint32(header[4:8])), int(header[3])
}

// String returns a short description used in logs and error messages
func (c *Command) String() string {
	return fmt.Sprintf("{CMD:%s, ARG:%s, BUF:%d, BUF1:%d}", c.Cmd, ArgName(c.Cmd, c.Arg()), len(c.Buf), len(c.Buf1))
}

func (c *Command) buf1Len() int {
	if len(c.Buf1) > MaxBuf1Size {
		return MaxBuf1Size
	}
	return len(c.Buf1)
}
