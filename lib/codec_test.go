package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestReadFields(t *testing.T) {
	// build a message with a bytes field, a varint field, a packed field and an unknown fixed32 field
	var bz []byte
	bz = AppendBytesField(bz, 1, []byte("key"))
	bz = AppendVarintField(bz, 2, 42)
	bz = AppendPackedVarints(bz, 3, []uint64{1, 300, 70000})
	bz = protowire.AppendTag(bz, 9, protowire.Fixed32Type)
	bz = protowire.AppendFixed32(bz, 7)
	// zero values are omitted
	bz = AppendVarintField(bz, 4, 0)
	bz = AppendBytesField(bz, 5, nil)
	var (
		gotKey    []byte
		gotVarint uint64
		gotPacked []uint64
		seen      []protowire.Number
	)
	// execute the function call
	err := ReadFields(bz, func(f ProtoField) ErrorI {
		seen = append(seen, f.Num)
		switch f.Num {
		case 1:
			gotKey = CopyBytes(f.Bytes)
		case 2:
			gotVarint = f.Varint
		case 3:
			var e ErrorI
			gotPacked, e = ReadPackedVarints(f.Bytes)
			return e
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []byte("key"), gotKey)
	require.EqualValues(t, 42, gotVarint)
	require.Equal(t, []uint64{1, 300, 70000}, gotPacked)
	// the unknown field is skipped and the omitted fields never appear
	require.Equal(t, []protowire.Number{1, 2, 3}, seen)
}

func TestReadFieldsTruncated(t *testing.T) {
	bz := AppendBytesField(nil, 1, []byte("truncated"))
	// chop the payload so the declared length overruns the buffer
	err := ReadFields(bz[:len(bz)-3], func(ProtoField) ErrorI { return nil })
	require.Error(t, err)
	require.True(t, IsCode(err, MainModule, CodeUnmarshal))
}
