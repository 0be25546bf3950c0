package banhammer

import (
	"github.com/relayguard/banhammer/model/identity"
)

// BannedClient is a client frozen at the moment it was banned.
type BannedClient struct {
	ClientRecord
	Reason Reason
}

// BannedSender is a sender frozen at the moment it was banned.
type BannedSender struct {
	SenderRecord
	Reason Reason
}

// BannedToken is a token frozen at the moment it was banned.
type BannedToken struct {
	TokenRecord
	Reason Reason
}

// BanList holds every banned identity, one table per axis. Entries are never removed or
// modified once inserted.
type BanList struct {
	Clients map[identity.Client]BannedClient
	Tokens  map[identity.Token]BannedToken
	Senders map[identity.Sender]BannedSender
}

func newBanList() *BanList {
	return &BanList{
		Clients: make(map[identity.Client]BannedClient),
		Tokens:  make(map[identity.Token]BannedToken),
		Senders: make(map[identity.Sender]BannedSender),
	}
}

// IsClientBanned returns true if client is in the ban list.
func (b *BanList) IsClientBanned(client identity.Client) bool {
	_, ok := b.Clients[client]
	return ok
}

// IsSenderBanned returns true if sender is in the ban list.
func (b *BanList) IsSenderBanned(sender identity.Sender) bool {
	_, ok := b.Senders[sender]
	return ok
}

// IsTokenBanned returns true if token is in the ban list.
func (b *BanList) IsTokenBanned(token identity.Token) bool {
	_, ok := b.Tokens[token]
	return ok
}

// Size returns the total number of banned identities across all axes.
func (b *BanList) Size() int {
	return len(b.Clients) + len(b.Senders) + len(b.Tokens)
}

// Copy returns a deep copy of the ban list that shares no memory with b.
func (b *BanList) Copy() *BanList {
	cp := &BanList{
		Clients: make(map[identity.Client]BannedClient, len(b.Clients)),
		Tokens:  make(map[identity.Token]BannedToken, len(b.Tokens)),
		Senders: make(map[identity.Sender]BannedSender, len(b.Senders)),
	}
	for k, v := range b.Clients {
		cp.Clients[k] = BannedClient{ClientRecord: v.copy(), Reason: v.Reason}
	}
	for k, v := range b.Tokens {
		cp.Tokens[k] = BannedToken{TokenRecord: v.copy(), Reason: v.Reason}
	}
	for k, v := range b.Senders {
		cp.Senders[k] = BannedSender{SenderRecord: v.copy(), Reason: v.Reason}
	}
	return cp
}
