package ingest

import (
	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/metrics"
)

// Submitter accepts decoded inputs for processing. Submit must be non-blocking and safe for
// concurrent use.
type Submitter interface {
	Submit(input *relayer.Input) bool
}

// Handler decodes the messages of a Kafka consumer group claim into relayer inputs and submits
// them. Messages are marked once submitted, whether or not the submitter accepted them, so inputs
// are delivered at most once. Undecodable messages are logged, counted and marked.
type Handler struct {
	log       zerolog.Logger
	metrics   module.EngineMetrics
	submitter Submitter
}

var _ sarama.ConsumerGroupHandler = (*Handler)(nil)

func NewHandler(log zerolog.Logger, metrics module.EngineMetrics, submitter Submitter) *Handler {
	return &Handler{
		log:       log.With().Str("component", "kafka_handler").Logger(),
		metrics:   metrics,
		submitter: submitter,
	}
}

func (h *Handler) Setup(sess sarama.ConsumerGroupSession) error {
	h.log.Info().
		Str("member_id", sess.MemberID()).
		Int32("generation_id", sess.GenerationID()).
		Msg("consumer group session started")
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim processes the messages of claim until the claim is closed or the session ends.
func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handleMessage(msg)
			sess.MarkMessage(msg, "")
		}
	}
}

func (h *Handler) handleMessage(msg *sarama.ConsumerMessage) {
	var input relayer.Input
	err := input.UnmarshalJSON(msg.Value)
	if err != nil {
		h.metrics.InputDecodeFailed(metrics.SourceKafka)
		h.log.Warn().
			Err(err).
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("dropping undecodable message")
		return
	}
	h.submitter.Submit(&input)
}
