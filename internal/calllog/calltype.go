package calllog

// CallType is the normalized name of a platform call type code.
type CallType string

const (
	CallTypeOutgoing           CallType = "OUTGOING"
	CallTypeIncoming           CallType = "INCOMING"
	CallTypeMissed             CallType = "MISSED"
	CallTypeVoicemail          CallType = "VOICEMAIL"
	CallTypeRejected           CallType = "REJECTED"
	CallTypeBlocked            CallType = "BLOCKED"
	CallTypeAnsweredExternally CallType = "ANSWERED_EXTERNALLY"
	CallTypeUnknown            CallType = "UNKNOWN"
)

// Platform call type codes (android.provider.CallLog.Calls.*_TYPE).
const (
	IncomingTypeCode           = 1
	OutgoingTypeCode           = 2
	MissedTypeCode             = 3
	VoicemailTypeCode          = 4
	RejectedTypeCode           = 5
	BlockedTypeCode            = 6
	AnsweredExternallyTypeCode = 7
)

var callTypesByCode = map[int]CallType{
	OutgoingTypeCode:           CallTypeOutgoing,
	IncomingTypeCode:           CallTypeIncoming,
	MissedTypeCode:             CallTypeMissed,
	VoicemailTypeCode:          CallTypeVoicemail,
	RejectedTypeCode:           CallTypeRejected,
	BlockedTypeCode:            CallTypeBlocked,
	AnsweredExternallyTypeCode: CallTypeAnsweredExternally,
}

// ResolveCallType maps a raw type code to its name. Unrecognized codes are UNKNOWN.
func ResolveCallType(code int) CallType {
	if t, ok := callTypesByCode[code]; ok {
		return t
	}
	return CallTypeUnknown
}

func (t CallType) String() string {
	return string(t)
}
