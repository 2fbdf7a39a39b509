package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models/events"
)

func TestPublisher_Message(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "microfinance.")
	t.Cleanup(func() { p.Close() })

	event := events.PaymentRecorded{
		PaymentID:    "pay-1",
		LoanID:       "loan-1",
		Amount:       decimal.RequireFromString("150"),
		BalanceAfter: decimal.RequireFromString("1000"),
		OccurredAt:   time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC),
	}

	msg, err := p.message(events.TopicPaymentRecorded, "loan-1", event)
	require.NoError(t, err)
	assert.Equal(t, "microfinance.payment_recorded", msg.Topic)
	assert.Equal(t, []byte("loan-1"), msg.Key)

	var decoded events.PaymentRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "pay-1", decoded.PaymentID)
	assert.True(t, decoded.BalanceAfter.Equal(event.BalanceAfter))
}

func TestPublisher_MessageWithoutPrefix(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "")
	t.Cleanup(func() { p.Close() })

	msg, err := p.message(events.TopicLoanQuoted, "", events.LoanQuoted{DueDate: civil.Date{Year: 2024, Month: 4, Day: 30}})
	require.NoError(t, err)
	assert.Equal(t, "loan_quoted", msg.Topic)
	assert.Empty(t, msg.Key)
	assert.Contains(t, string(msg.Value), "2024-04-30")
}

func TestPublisher_MessageEncodeError(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "microfinance.")
	t.Cleanup(func() { p.Close() })

	_, err := p.message(events.TopicLoanQuoted, "k", make(chan int))
	assert.Error(t, err)
}
