package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/repository/firestore"
	"github.com/secmon-lab/sortie/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

var backends = []struct {
	name    string
	newRepo func(t *testing.T) interfaces.Repository
}{
	{"Memory", newMemoryRepository},
	{"Firestore", newFirestoreRepository},
}

func ptr[T any](v T) *T { return &v }
