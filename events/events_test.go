package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"briefcast/types"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func expectEvent(want Type, trackID string) mocks.ValueChecker {
	return func(val []byte) error {
		var e Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != want || e.TrackID != trackID {
			return fmt.Errorf("got %s/%s, want %s/%s", e.Type, e.TrackID, want, trackID)
		}
		if e.At.IsZero() {
			return errors.New("missing timestamp")
		}
		return nil
	}
}

func TestPublisherHooks(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectEvent(TrackStarted, "bookmark-1"))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectEvent(TrackEnded, "bookmark-1"))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectEvent(GenerationSucceeded, "todays-briefing"))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectEvent(GenerationFailed, "x"))

	p := NewPublisherWithProducer(producer, "briefcast-playback-events")
	track := types.Track{ID: "bookmark-1", Title: "Rates"}
	p.TrackStarted(track, true)
	p.TrackEnded(track)
	p.GenerationFinished(types.GenerationState{ID: "todays-briefing"}, 2*time.Second, nil)
	p.GenerationFinished(types.GenerationState{ID: "x"}, time.Second, errors.New("boom"))

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPublisherSurvivesSendFailure(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectEvent(TrackEnded, "b"))

	p := NewPublisherWithProducer(producer, "t")
	p.TrackStarted(types.Track{ID: "a"}, false)
	p.TrackEnded(types.Track{ID: "b"})
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConsumerProcess(t *testing.T) {
	var got []Event
	h := &groupHandler{handle: func(_ context.Context, e Event) error {
		if e.TrackID == "retry" {
			return errors.New("later")
		}
		got = append(got, e)
		return nil
	}}

	valid, _ := json.Marshal(Event{Type: TrackStarted, TrackID: "a"})
	retry, _ := json.Marshal(Event{Type: TrackStarted, TrackID: "retry"})

	tests := []struct {
		name  string
		value []byte
		mark  bool
	}{
		{"valid", valid, true},
		{"handler error", retry, false},
		{"garbage", []byte("{"), true},
		{"untyped", []byte(`{"track_id":"a"}`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if mark := h.process(context.Background(), tt.value); mark != tt.mark {
				t.Fatalf("mark = %v, want %v", mark, tt.mark)
			}
		})
	}
	if len(got) != 1 || got[0].TrackID != "a" {
		t.Fatalf("handled = %+v", got)
	}
}
