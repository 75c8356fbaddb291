package lib

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

/*
	This file implements the protobuf wire format helpers used by the domain codecs (accounts, transactions,
	vote states and vote instructions). Messages are encoded field by field with protowire and follow proto3
	semantics: zero values are omitted and unknown fields are skipped on decode
*/

// ProtoField is a single decoded field of a protobuf message
type ProtoField struct {
	Num    protowire.Number // the field number
	Type   protowire.Type   // the wire type
	Varint uint64           // the value if Type == VarintType
	Bytes  []byte           // the value if Type == BytesType
}

// AppendBytesField() appends a length delimited field, omitting empty values
func AppendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendVarintField() appends a varint field, omitting zero values
func AppendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendPackedVarints() appends a packed repeated varint field, omitting empty lists
func AppendPackedVarints(b []byte, num protowire.Number, v []uint64) []byte {
	if len(v) == 0 {
		return b
	}
	var packed []byte
	for _, x := range v {
		packed = protowire.AppendVarint(packed, x)
	}
	return AppendBytesField(b, num, packed)
}

// ReadFields() decodes a protobuf message one field at a time
func ReadFields(bz []byte, cb func(f ProtoField) ErrorI) ErrorI {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return ErrUnmarshal(protowire.ParseError(n))
		}
		bz = bz[n:]
		f := ProtoField{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(bz)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(bz)
		default:
			// unknown wire types are skipped
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return ErrUnmarshal(protowire.ParseError(n))
			}
			bz = bz[n:]
			continue
		}
		if n < 0 {
			return ErrUnmarshal(protowire.ParseError(n))
		}
		bz = bz[n:]
		if err := cb(f); err != nil {
			return err
		}
	}
	return nil
}

// ReadPackedVarints() decodes the payload of a packed repeated varint field
func ReadPackedVarints(bz []byte) ([]uint64, ErrorI) {
	var out []uint64
	for len(bz) > 0 {
		v, n := protowire.ConsumeVarint(bz)
		if n < 0 {
			return nil, ErrUnmarshal(protowire.ParseError(n))
		}
		out = append(out, v)
		bz = bz[n:]
	}
	return out, nil
}

// CopyBytes() returns a copy of a field value that doesn't alias the input buffer
func CopyBytes(bz []byte) []byte {
	if bz == nil {
		return nil
	}
	return append(make([]byte, 0, len(bz)), bz...)
}

// ErrWrongWireType() is returned when a known field arrives with an unexpected wire type
func ErrWrongWireType(f ProtoField) ErrorI {
	return ErrUnmarshal(fmt.Errorf("field %d has unexpected wire type %d", f.Num, f.Type))
}
