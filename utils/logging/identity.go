package logging

import (
	"github.com/relayguard/banhammer/model/identity"
)

// Token returns the string form of an optional token, or the empty string if token is nil.
func Token(token *identity.Token) string {
	if token == nil {
		return ""
	}
	return token.String()
}

func Clients(clients []identity.Client) []string {
	ss := make([]string, 0, len(clients))
	for _, c := range clients {
		ss = append(ss, c.String())
	}
	return ss
}

func Senders(senders []identity.Sender) []string {
	ss := make([]string, 0, len(senders))
	for _, s := range senders {
		ss = append(ss, s.String())
	}
	return ss
}

func Tokens(tokens []identity.Token) []string {
	ss := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ss = append(ss, t.String())
	}
	return ss
}
