package producers

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/campussim/internal/models"
)

func TestSaramaProducerSendsKeyedMessages(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"studentId":"CS1-000","eventType":"departure"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mock)
	if err := p.WriteMessage(models.TopicMovement, []byte(`{"studentId":"CS1-000","eventType":"departure"}`)); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteMessage(models.TopicMovement, []byte(`{}`)); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("second send error = %v", err)
	}
	if p.Sent() != 1 {
		t.Errorf("Sent() = %d, want 1", p.Sent())
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteMessage(models.TopicMovement, []byte(`{}`)); err == nil {
		t.Error("write after close should fail")
	}
}

func TestStudentKey(t *testing.T) {
	for _, tc := range []struct {
		msg  string
		want string
	}{
		{`{"studentId":"BIO-004","eventType":"arrival"}`, "BIO-004"},
		{`{"eventType":"released"}`, ""},
		{`not json`, ""},
	} {
		if got := studentKey([]byte(tc.msg)); got != tc.want {
			t.Errorf("studentKey(%s) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := NewSaramaConfig(&models.Config{SessionTimeoutMs: 10000})
	if !cfg.Producer.Return.Successes || cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Error("sync producer settings not applied")
	}
	if cfg.Consumer.Group.Session.Timeout.Milliseconds() != 10000 {
		t.Errorf("session timeout = %v", cfg.Consumer.Group.Session.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config invalid: %v", err)
	}
}
