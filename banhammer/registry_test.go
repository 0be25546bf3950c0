package banhammer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/relayguard/banhammer/model/identity"
)

// TestRegistry_Associate checks entries are created on first reference and cross references are
// only appended once.
func TestRegistry_Associate(t *testing.T) {
	r := newRegistry()
	client := identity.MustParseClient("10.0.0.1")
	sender := identity.SenderFromBytes([]byte{1})
	token := identity.Token("t1")

	r.associateClient(client, sender, nil)
	require.Contains(t, r.clients, client)
	assert.Equal(t, []identity.Sender{sender}, r.clients[client].Senders)
	assert.Empty(t, r.clients[client].Tokens)
	assert.True(t, r.clients[client].Progress.IsZero())

	r.associateClient(client, sender, &token)
	r.associateClient(client, sender, &token)
	assert.Equal(t, []identity.Sender{sender}, r.clients[client].Senders)
	assert.Equal(t, []identity.Token{token}, r.clients[client].Tokens)

	r.associateSender(sender, client, nil)
	assert.Equal(t, []identity.Client{client}, r.senders[sender].Clients)

	r.associateToken(token, client, sender)
	r.associateToken(token, client, sender)
	assert.Equal(t, []identity.Client{client}, r.tokens[token].Clients)
	assert.Equal(t, []identity.Sender{sender}, r.tokens[token].Senders)

	assert.Len(t, r.clients, 1)
	assert.Len(t, r.senders, 1)
	assert.Len(t, r.tokens, 1)
}

// TestRegistry_NoDuplicates checks that for any sequence of associations, no cross reference list
// holds the same identity twice and every observed pair is recorded.
func TestRegistry_NoDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clients := []identity.Client{
			identity.MustParseClient("10.0.0.1"),
			identity.MustParseClient("10.0.0.2"),
			identity.MustParseClient("::1"),
		}
		senders := []identity.Sender{
			identity.SenderFromBytes([]byte{1}),
			identity.SenderFromBytes([]byte{2}),
		}
		tokens := []identity.Token{"a", "b", "c"}

		r := newRegistry()
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			client := rapid.SampledFrom(clients).Draw(t, "client")
			sender := rapid.SampledFrom(senders).Draw(t, "sender")
			var token *identity.Token
			if rapid.Bool().Draw(t, "withToken") {
				tok := rapid.SampledFrom(tokens).Draw(t, "token")
				token = &tok
			}

			r.associateClient(client, sender, token)
			r.associateSender(sender, client, token)
			if token != nil {
				r.associateToken(*token, client, sender)
			}

			if !containsOnce(r.clients[client].Senders, sender) {
				t.Fatalf("client %s must reference sender %s exactly once", client, sender)
			}
			if !containsOnce(r.senders[sender].Clients, client) {
				t.Fatalf("sender %s must reference client %s exactly once", sender, client)
			}
			if token != nil {
				if !containsOnce(r.clients[client].Tokens, *token) || !containsOnce(r.senders[sender].Tokens, *token) {
					t.Fatalf("token %s must be referenced exactly once", *token)
				}
				if !containsOnce(r.tokens[*token].Clients, client) || !containsOnce(r.tokens[*token].Senders, sender) {
					t.Fatalf("token %s must reference its client and sender exactly once", *token)
				}
			}
		}

		for _, rec := range r.clients {
			requireUnique(t, rec.Senders)
			requireUnique(t, rec.Tokens)
		}
		for _, rec := range r.senders {
			requireUnique(t, rec.Clients)
			requireUnique(t, rec.Tokens)
		}
		for _, rec := range r.tokens {
			requireUnique(t, rec.Clients)
			requireUnique(t, rec.Senders)
		}
	})
}

func containsOnce[T comparable](list []T, v T) bool {
	n := 0
	for _, e := range list {
		if e == v {
			n++
		}
	}
	return n == 1
}

func requireUnique[T comparable](t *rapid.T, list []T) {
	seen := make(map[T]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate entry %v", v)
		}
		seen[v] = struct{}{}
	}
}
