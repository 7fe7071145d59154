package library

import (
	"context"
	"testing"

	"github.com/conorfennell/cardfold/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) (*FolderService, *CardService) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFolderService(db, nil), NewCardService(db, nil)
}

func TestCreateFolderThenList(t *testing.T) {
	folders, _ := newTestServices(t)
	ctx := context.Background()

	created, err := folders.CreateFolder(ctx, "Spanish")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	all, err := folders.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Spanish", all[0].Name)
	require.Equal(t, created.ID, all[0].ID)
}

func TestCreateFolderValidation(t *testing.T) {
	folders, _ := newTestServices(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := folders.CreateFolder(ctx, name)
		require.ErrorIs(t, err, ErrValidation)
	}

	all, err := folders.ListFolders(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestDeleteFolderIdempotent(t *testing.T) {
	folders, _ := newTestServices(t)
	ctx := context.Background()

	created, err := folders.CreateFolder(ctx, "Spanish")
	require.NoError(t, err)
	require.NoError(t, folders.DeleteFolder(ctx, created.ID))
	require.NoError(t, folders.DeleteFolder(ctx, created.ID))
}

func TestCreateCardValidationLeavesStoreUnchanged(t *testing.T) {
	folders, cards := newTestServices(t)
	ctx := context.Background()

	folder, err := folders.CreateFolder(ctx, "Maths")
	require.NoError(t, err)
	_, err = cards.CreateCard(ctx, folder.ID, "2+2", "4")
	require.NoError(t, err)

	before, err := folders.CountCards(ctx, folder.ID)
	require.NoError(t, err)

	_, err = cards.CreateCard(ctx, folder.ID, "", "x")
	require.ErrorIs(t, err, ErrValidation)
	_, err = cards.CreateCard(ctx, folder.ID, "x", "  ")
	require.ErrorIs(t, err, ErrValidation)

	after, err := folders.CountCards(ctx, folder.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCreateCardTrimsInput(t *testing.T) {
	folders, cards := newTestServices(t)
	ctx := context.Background()

	folder, err := folders.CreateFolder(ctx, "Maths")
	require.NoError(t, err)
	card, err := cards.CreateCard(ctx, folder.ID, "  2+2 ", " 4\n")
	require.NoError(t, err)
	require.Equal(t, "2+2", card.Front)
	require.Equal(t, "4", card.Back)
}

func TestUnfiledCard(t *testing.T) {
	_, cards := newTestServices(t)
	ctx := context.Background()

	card, err := cards.CreateCard(ctx, 0, "loose", "card")
	require.NoError(t, err)
	require.Zero(t, card.FolderID)
}

func TestDeleteFolderOrphansCards(t *testing.T) {
	folders, cards := newTestServices(t)
	ctx := context.Background()

	folder, err := folders.CreateFolder(ctx, "Doomed")
	require.NoError(t, err)
	_, err = cards.CreateCard(ctx, folder.ID, "f", "b")
	require.NoError(t, err)

	require.NoError(t, folders.DeleteFolder(ctx, folder.ID))

	orphans, err := cards.ListCards(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Equal(t, "f", orphans[0].Front)
}

func TestCountCardsNeverStale(t *testing.T) {
	folders, cards := newTestServices(t)
	ctx := context.Background()

	folder, err := folders.CreateFolder(ctx, "Counted")
	require.NoError(t, err)

	n, err := folders.CountCards(ctx, folder.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	card, err := cards.CreateCard(ctx, folder.ID, "f", "b")
	require.NoError(t, err)
	n, err = folders.CountCards(ctx, folder.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, cards.DeleteCard(ctx, card.ID))
	n, err = folders.CountCards(ctx, folder.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}
