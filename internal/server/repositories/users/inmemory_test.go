package users

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com", Verified: true})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	byEmail, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID.Name = "mutated"
	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}

func TestInMemory_Errors(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{Email: "a@example.com"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.GetByID(ctx, "xyz")
	assert.ErrorIs(t, err, common.ErrorInvalidID)

	_, err = r.GetByID(ctx, "6f1c1f4e-5d7b-4a38-9b8e-0a4b8f7f2d11")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemory_Delete(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Email: "gone@example.com"})
	require.NoError(t, err)

	r.Delete(u.ID)

	_, err = r.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Create(ctx, &models.User{Email: "gone@example.com"})
	assert.NoError(t, err)
}

func TestInMemory_ConcurrentDuplicateCreate(t *testing.T) {
	r := NewInMemoryRepository()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(context.Background(), &models.User{Email: "race@example.com"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		}
	}
	assert.Equal(t, 1, ok)
}
