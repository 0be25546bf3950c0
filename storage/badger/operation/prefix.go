package operation

import (
	"fmt"

	"github.com/relayguard/banhammer/model/identity"
)

const (
	// codes for bans, one per identity axis
	codeClientBan = 10
	codeSenderBan = 11
	codeTokenBan  = 12
)

func banCode(axis identity.Axis) (byte, error) {
	switch axis {
	case identity.AxisClient:
		return codeClientBan, nil
	case identity.AxisSender:
		return codeSenderBan, nil
	case identity.AxisToken:
		return codeTokenBan, nil
	default:
		return 0, fmt.Errorf("unknown identity axis %q", axis)
	}
}

func makePrefix(code byte, keys ...[]byte) []byte {
	prefix := []byte{code}
	for _, key := range keys {
		prefix = append(prefix, key...)
	}
	return prefix
}
