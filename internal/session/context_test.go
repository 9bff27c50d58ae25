// internal/session/context_test.go
package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextPartialUpdate(t *testing.T) {
	ctx := NewContext()

	ctx.Apply(Update{
		Workspace: Str("acme"),
		Project:   Str("website"),
		Path:      Str("/acme/website"),
	})
	ctx.Apply(Update{Project: Str("mobile")})

	snap := ctx.Snapshot()
	assert.Equal(t, "acme", snap.Workspace, "untouched fields survive partial updates")
	assert.Equal(t, "mobile", snap.Project)
	assert.Equal(t, "/acme/website", snap.Path)
}

func TestContextClearField(t *testing.T) {
	ctx := NewContext()
	ctx.Apply(Update{Workspace: Str("acme")})
	ctx.Apply(Update{Workspace: Str("")})

	assert.Equal(t, "", ctx.Snapshot().Workspace)
}

func TestContextSnapshotIsCopy(t *testing.T) {
	ctx := NewContext()
	ctx.Apply(Update{Permissions: []string{"read", "write"}})

	snap := ctx.Snapshot()
	snap.Permissions[0] = "mutated"

	assert.Equal(t, []string{"read", "write"}, ctx.Snapshot().Permissions)
}

func TestContextConcurrentAccess(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.Apply(Update{Workspace: Str("acme")})
		}()
		go func() {
			defer wg.Done()
			_ = ctx.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, "acme", ctx.Snapshot().Workspace)
}
