package banhammer

import (
	"github.com/relayguard/banhammer/model/identity"
)

// ClientRecord is the registry entry of a client address.
type ClientRecord struct {
	Senders  []identity.Sender
	Tokens   []identity.Token
	Progress Progress
}

// SenderRecord is the registry entry of a sending account.
type SenderRecord struct {
	Clients  []identity.Client
	Tokens   []identity.Token
	Progress Progress
}

// TokenRecord is the registry entry of an access token.
type TokenRecord struct {
	Clients  []identity.Client
	Senders  []identity.Sender
	Progress Progress
}

func (r *ClientRecord) copy() ClientRecord {
	return ClientRecord{
		Senders:  append([]identity.Sender(nil), r.Senders...),
		Tokens:   append([]identity.Token(nil), r.Tokens...),
		Progress: r.Progress.copy(),
	}
}

func (r *SenderRecord) copy() SenderRecord {
	return SenderRecord{
		Clients:  append([]identity.Client(nil), r.Clients...),
		Tokens:   append([]identity.Token(nil), r.Tokens...),
		Progress: r.Progress.copy(),
	}
}

func (r *TokenRecord) copy() TokenRecord {
	return TokenRecord{
		Clients:  append([]identity.Client(nil), r.Clients...),
		Senders:  append([]identity.Sender(nil), r.Senders...),
		Progress: r.Progress.copy(),
	}
}

// registry holds the active (not banned) identities of each axis together with their
// associations to identities on the other two axes.
// It is not concurrency safe.
type registry struct {
	clients map[identity.Client]*ClientRecord
	senders map[identity.Sender]*SenderRecord
	tokens  map[identity.Token]*TokenRecord
}

func newRegistry() *registry {
	return &registry{
		clients: make(map[identity.Client]*ClientRecord),
		senders: make(map[identity.Sender]*SenderRecord),
		tokens:  make(map[identity.Token]*TokenRecord),
	}
}

// associateClient records that client was seen together with sender and, if not nil, token.
// The client entry is created on first reference.
func (r *registry) associateClient(client identity.Client, sender identity.Sender, token *identity.Token) {
	rec, ok := r.clients[client]
	if !ok {
		rec = &ClientRecord{}
		r.clients[client] = rec
	}
	rec.Senders = appendUnique(rec.Senders, sender)
	if token != nil {
		rec.Tokens = appendUnique(rec.Tokens, *token)
	}
}

// associateSender records that sender was seen together with client and, if not nil, token.
func (r *registry) associateSender(sender identity.Sender, client identity.Client, token *identity.Token) {
	rec, ok := r.senders[sender]
	if !ok {
		rec = &SenderRecord{}
		r.senders[sender] = rec
	}
	rec.Clients = appendUnique(rec.Clients, client)
	if token != nil {
		rec.Tokens = appendUnique(rec.Tokens, *token)
	}
}

// associateToken records that token was seen together with client and sender.
func (r *registry) associateToken(token identity.Token, client identity.Client, sender identity.Sender) {
	rec, ok := r.tokens[token]
	if !ok {
		rec = &TokenRecord{}
		r.tokens[token] = rec
	}
	rec.Clients = appendUnique(rec.Clients, client)
	rec.Senders = appendUnique(rec.Senders, sender)
}

// appendUnique appends v to list unless list already contains it.
func appendUnique[T comparable](list []T, v T) []T {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
