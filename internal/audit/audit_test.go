package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInsertsEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO verification_audit_events").
		WithArgs(sqlmock.AnyArg(), "verification.session_locked", "conv1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewService(db)
	err = svc.Record(context.Background(), Event{
		EventType:      EventSessionLocked,
		ConversationID: "conv1",
		Details:        Detail(map[string]any{"attempts": 2}),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS verification_audit_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc := NewService(db)
	require.NoError(t, svc.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetail(t *testing.T) {
	assert.Nil(t, Detail(nil))
	assert.JSONEq(t, `{"intent":"balance"}`, string(Detail(map[string]any{"intent": "balance"})))
}

func TestNopRecorder(t *testing.T) {
	assert.NoError(t, Nop{}.Record(context.Background(), Event{}))
}
