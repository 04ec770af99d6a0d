package filestore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"vectordb/internal/value"
)

// Row payload encoding: one tag byte per value naming its Kind,
// followed by a fixed or length-prefixed payload. This is the
// "columnar layout" binary companion to the TOML sidecar (§6.2); it
// is this implementation's concern, not a fixed wire format.
const (
	tagNull byte = iota
	tagInt
	tagFloat
	tagString
	tagBool
	tagVector
	tagMatrix
)

func encodeValue(w *bufio.Writer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		return w.WriteByte(tagNull)
	case value.KindInt:
		i, _ := v.AsInt()
		if err := w.WriteByte(tagInt); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, i)
	case value.KindFloat:
		f, _ := v.AsFloat()
		if err := w.WriteByte(tagFloat); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, f)
	case value.KindString:
		s, _ := v.AsString()
		if err := w.WriteByte(tagString); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
			return err
		}
		_, err := w.WriteString(s)
		return err
	case value.KindBool:
		b, _ := v.AsBool()
		if err := w.WriteByte(tagBool); err != nil {
			return err
		}
		if b {
			return w.WriteByte(1)
		}
		return w.WriteByte(0)
	case value.KindVector:
		vec, _ := v.AsVector()
		if err := w.WriteByte(tagVector); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(vec))); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, vec)
	case value.KindMatrix:
		mat, _ := v.AsMatrix()
		rows, cols := v.MatrixShape()
		if err := w.WriteByte(tagMatrix); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(rows)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(cols)); err != nil {
			return err
		}
		for _, row := range mat {
			if err := binary.Write(w, binary.LittleEndian, row); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("filestore: cannot encode value kind %s", v.Kind())
	}
}

func decodeValue(r *bufio.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case tagNull:
		return value.Null(), nil
	case tagInt:
		var i int64
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return value.Value{}, err
		}
		return value.Int(i), nil
	case tagFloat:
		var f float32
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case tagString:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return value.Value{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return value.Value{}, err
		}
		return value.String(string(buf)), nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil
	case tagVector:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return value.Value{}, err
		}
		data := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return value.Value{}, err
		}
		return value.Vector(data), nil
	case tagMatrix:
		var rows, cols uint32
		if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
			return value.Value{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
			return value.Value{}, err
		}
		out := make([][]float32, rows)
		for i := range out {
			row := make([]float32, cols)
			if err := binary.Read(r, binary.LittleEndian, row); err != nil {
				return value.Value{}, err
			}
			out[i] = row
		}
		m, err := value.Matrix(out)
		if err != nil {
			return value.Value{}, err
		}
		return m, nil
	default:
		return value.Value{}, fmt.Errorf("filestore: unknown value tag %d", tag)
	}
}
