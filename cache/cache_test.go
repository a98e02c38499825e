package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Manishmatre/clinicauth/identity"
)

func sampleRecord() *Record {
	return &Record{
		User: &identity.User{
			ID:            "user-1",
			Name:          "Alice Admin",
			Email:         "alice@example.com",
			Role:          identity.RoleAdmin,
			EmailVerified: true,
			ClinicID:      "clinic-1",
		},
		Clinic: &identity.Clinic{
			ID:     "clinic-1",
			Name:   "Sunrise Clinic",
			Status: identity.ClinicActive,
		},
		SavedAt: time.Now().Truncate(time.Second),
	}
}

// storeUnderTest exercises the full Store contract against any
// implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	rec, err := store.LoadRecord(ctx)
	if err != nil || rec != nil {
		t.Fatalf("LoadRecord on empty store = (%v, %v), want (nil, nil)", rec, err)
	}

	want := sampleRecord()
	if err := store.SaveRecord(ctx, want); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	rec, err = store.LoadRecord(ctx)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if rec == nil || rec.User == nil || rec.User.ID != want.User.ID || rec.User.Role != identity.RoleAdmin {
		t.Fatalf("LoadRecord = %+v, want user %s", rec, want.User.ID)
	}
	if rec.Clinic == nil || rec.Clinic.ID != "clinic-1" || !rec.Clinic.Active() {
		t.Fatalf("LoadRecord clinic = %+v, want active clinic-1", rec.Clinic)
	}

	if err := store.ClearRecord(ctx); err != nil {
		t.Fatalf("ClearRecord: %v", err)
	}
	if rec, _ = store.LoadRecord(ctx); rec != nil {
		t.Fatalf("LoadRecord after clear = %+v, want nil", rec)
	}

	// Convenience state survives a record clear.
	if err := store.SetLastEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SetLastEmail: %v", err)
	}
	if err := store.SetPreferredRole(ctx, identity.RoleDoctor); err != nil {
		t.Fatalf("SetPreferredRole: %v", err)
	}
	if email, _ := store.LastEmail(ctx); email != "alice@example.com" {
		t.Fatalf("LastEmail = %q", email)
	}
	if role, _ := store.PreferredRole(ctx); role != identity.RoleDoctor {
		t.Fatalf("PreferredRole = %q", role)
	}

	// Redirect path is one-shot.
	if err := store.SetRedirectPath(ctx, "/doctor/patients/42"); err != nil {
		t.Fatalf("SetRedirectPath: %v", err)
	}
	if path, _ := store.TakeRedirectPath(ctx); path != "/doctor/patients/42" {
		t.Fatalf("TakeRedirectPath = %q", path)
	}
	if path, _ := store.TakeRedirectPath(ctx); path != "" {
		t.Fatalf("second TakeRedirectPath = %q, want empty", path)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestFileStoreContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	storeUnderTest(t, NewFileStore(path))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewFileStore(path)
	if err := first.SaveRecord(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	second := NewFileStore(path)
	rec, err := second.LoadRecord(ctx)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if rec == nil || rec.User == nil || rec.User.ID != "user-1" {
		t.Fatalf("LoadRecord from second instance = %+v", rec)
	}
}

func TestFileStoreCorruptFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewFileStore(path)
	rec, err := store.LoadRecord(ctx)
	if err != nil || rec != nil {
		t.Fatalf("LoadRecord on corrupt file = (%v, %v), want (nil, nil)", rec, err)
	}

	// The store recovers: a save replaces the corrupt file.
	if err := store.SaveRecord(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if rec, _ = store.LoadRecord(ctx); rec == nil {
		t.Fatal("LoadRecord after save = nil, want record")
	}
}
