package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-streaming-store/internal/postgres/pgtest"
)

func TestRepoTicketLifecycle(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, name, phone, email, username, password_hash) VALUES ('u1','Ana','9','a@x.pe','ana','h');
		INSERT INTO purchases (id, user_id, product_id, product_name, price) VALUES ('PUR-1','u1','p1','Max',9.90);`)
	require.NoError(t, err)

	svc := newService(&Repo{DB: db})

	req, err := svc.Create(ctx, "u1", "PUR-1", "Codigo")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "u1", "PUR-1", "Codigo")
	assert.ErrorIs(t, err, ErrTicketPending, "partial unique index rejects a second pending ticket")

	list, err := svc.PurchasesWithStatus(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].TicketStatus)
	assert.Equal(t, StatusPending, *list[0].TicketStatus)

	_, err = svc.Resolve(ctx, req.Ticket.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, req.Ticket.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	list, err = svc.PurchasesWithStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, *list[0].TicketStatus)
}
