package protocol

// Nakama match opcodes. Client to server opcodes stay below 100.
const (
	OpReady        int64 = 1
	OpStart        int64 = 2
	OpNextSentence int64 = 3
	OpSubmit       int64 = 4
	OpTyping       int64 = 5
	OpPing         int64 = 6
	OpLeave        int64 = 7

	OpPlayerJoined     int64 = 101
	OpPlayerLeft       int64 = 102
	OpGameStarted      int64 = 103
	OpReadyNotice      int64 = 104
	OpSentenceAssigned int64 = 105
	OpSubmitResult     int64 = 106
	OpSentenceComplete int64 = 107
	OpGarbageAttack    int64 = 108
	OpPlayerEliminated int64 = 109
	OpWinner           int64 = 110
	OpTypingUpdate     int64 = 111
	OpRoomState        int64 = 112
	OpPong             int64 = 113
	OpError            int64 = 199
)

var opcodes = map[Type]int64{
	MsgReady:        OpReady,
	MsgStart:        OpStart,
	MsgNextSentence: OpNextSentence,
	MsgSubmit:       OpSubmit,
	MsgTyping:       OpTyping,
	MsgPing:         OpPing,
	MsgLeave:        OpLeave,

	MsgPlayerJoined:     OpPlayerJoined,
	MsgPlayerLeft:       OpPlayerLeft,
	MsgGameStarted:      OpGameStarted,
	MsgReadyNotice:      OpReadyNotice,
	MsgSentenceAssigned: OpSentenceAssigned,
	MsgSubmitResult:     OpSubmitResult,
	MsgSentenceComplete: OpSentenceComplete,
	MsgGarbageAttack:    OpGarbageAttack,
	MsgPlayerEliminated: OpPlayerEliminated,
	MsgWinner:           OpWinner,
	MsgTypingUpdate:     OpTypingUpdate,
	MsgRoomState:        OpRoomState,
	MsgPong:             OpPong,
	MsgError:            OpError,
}

var types = func() map[int64]Type {
	m := make(map[int64]Type, len(opcodes))
	for t, op := range opcodes {
		m[op] = t
	}
	return m
}()

// OpCode returns the Nakama opcode for t.
func OpCode(t Type) (int64, bool) {
	op, ok := opcodes[t]
	return op, ok
}

// TypeOf returns the message type carried by a Nakama opcode.
func TypeOf(op int64) (Type, bool) {
	t, ok := types[op]
	return t, ok
}
