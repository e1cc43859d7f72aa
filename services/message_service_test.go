package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/models"
)

type recordingMessages struct {
	got []models.OwnerMessage
}

func (r *recordingMessages) OwnerMessage(msg models.OwnerMessage) {
	r.got = append(r.got, msg)
}

type mail struct {
	to, subject, body string
}

type chanMailer chan mail

func (m chanMailer) Send(to, subject, body string) error {
	m <- mail{to, subject, body}
	return nil
}

func TestSendMessage(t *testing.T) {
	_, store := newCatalog(t)
	ctx := context.Background()
	addWorker(t, store, "w1", "Rana", "rana@example.com", "downtown")

	notifier := &recordingMessages{}
	mailer := make(chanMailer, 1)
	svc := NewMessageService(store.Messages(), store.Users(), notifier, mailer, "owner@example.com")
	svc.now = fixedClock(testNow)

	msg, err := svc.SendMessage(ctx, "w1", "  need 5 more X1 cases  ")
	require.NoError(t, err)
	assert.Equal(t, "need 5 more X1 cases", msg.Body)
	assert.Equal(t, "w1", msg.WorkerID)
	assert.Equal(t, "Rana", msg.WorkerName)
	assert.Equal(t, "downtown", msg.BranchID)
	assert.Equal(t, testNow, msg.CreatedAt)

	require.Len(t, notifier.got, 1)
	assert.Equal(t, msg.ID, notifier.got[0].ID)

	select {
	case sent := <-mailer:
		assert.Equal(t, "owner@example.com", sent.to)
		assert.Contains(t, sent.subject, "Rana")
		assert.Contains(t, sent.body, "need 5 more X1 cases")
	case <-time.After(2 * time.Second):
		t.Fatal("owner email was not sent")
	}

	stored, err := svc.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)
}

func TestSendMessage_Rejections(t *testing.T) {
	_, store := newCatalog(t)
	svc := NewMessageService(store.Messages(), store.Users(), nil, nil, "")

	_, err := svc.SendMessage(context.Background(), "w1", "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "body")

	_, err = svc.SendMessage(context.Background(), "ghost", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMessages_NewestFirst(t *testing.T) {
	_, store := newCatalog(t)
	ctx := context.Background()
	addWorker(t, store, "w1", "Rana", "rana@example.com", "downtown")
	svc := NewMessageService(store.Messages(), store.Users(), nil, nil, "")

	for _, body := range []string{"first", "second", "third"} {
		_, err := svc.SendMessage(ctx, "w1", body)
		require.NoError(t, err)
	}

	latest, err := svc.ListMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].Body)
	assert.Equal(t, "second", latest[1].Body)
}
