package calllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCallType(t *testing.T) {
	tests := map[int]CallType{
		1:  CallTypeIncoming,
		2:  CallTypeOutgoing,
		3:  CallTypeMissed,
		4:  CallTypeVoicemail,
		5:  CallTypeRejected,
		6:  CallTypeBlocked,
		7:  CallTypeAnsweredExternally,
		0:  CallTypeUnknown,
		8:  CallTypeUnknown,
		-1: CallTypeUnknown,
	}

	for code, want := range tests {
		assert.Equal(t, want, ResolveCallType(code), "code %d", code)
	}
}

func TestRawCallRecord_Int64(t *testing.T) {
	r := RawCallRecord{
		"s":     "0123",
		"hex":   "0x10",
		"bytes": []byte("77"),
		"f":     float64(12),
		"bad":   "abc",
		"null":  nil,
	}

	assert.Equal(t, int64(123), r.Int64("s"), "leading zeros are decimal")
	assert.Equal(t, int64(0), r.Int64("hex"))
	assert.Equal(t, int64(77), r.Int64("bytes"))
	assert.Equal(t, int64(12), r.Int64("f"))
	assert.Equal(t, int64(0), r.Int64("bad"))
	assert.Equal(t, int64(0), r.Int64("null"))
	assert.Equal(t, int64(0), r.Int64("missing"))
}
