package relayer

import (
	"encoding/json"
	"fmt"

	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/model/violation"
)

// Input is a relayed transaction as seen by the banhammer, already decoded upstream.
// Token and Error are optional.
type Input struct {
	Client identity.Client
	Sender identity.Sender
	Token  *identity.Token
	Error  *violation.Violation
}

// HasToken returns true if the transaction was submitted with an access token.
func (i *Input) HasToken() bool {
	return i.Token != nil
}

// wireInput is the JSON form produced by the relayer's transaction decoder.
type wireInput struct {
	Client string     `json:"client"`
	From   string     `json:"from"`
	Token  *string    `json:"token,omitempty"`
	Error  *wireError `json:"error,omitempty"`
}

type wireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON decodes the relayer's JSON form of an input.
func (i *Input) UnmarshalJSON(data []byte) error {
	var w wireInput
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("could not decode input: %w", err)
	}

	client, err := identity.ParseClient(w.Client)
	if err != nil {
		return err
	}
	sender, err := identity.ParseSender(w.From)
	if err != nil {
		return err
	}

	decoded := Input{
		Client: client,
		Sender: sender,
	}
	if w.Token != nil {
		token := identity.Token(*w.Token)
		decoded.Token = &token
	}
	if w.Error != nil {
		v, err := violation.Parse(w.Error.Kind, w.Error.Message)
		if err != nil {
			return err
		}
		decoded.Error = v
	}

	*i = decoded
	return nil
}

// MarshalJSON encodes the input in the same form UnmarshalJSON accepts.
func (i Input) MarshalJSON() ([]byte, error) {
	w := wireInput{
		Client: i.Client.String(),
		From:   i.Sender.String(),
	}
	if i.Token != nil {
		token := i.Token.String()
		w.Token = &token
	}
	if i.Error != nil {
		w.Error = &wireError{Kind: i.Error.Kind.String(), Message: i.Error.Message}
	}
	return json.Marshal(w)
}
