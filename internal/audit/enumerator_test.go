package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
)

func TestEnumerateMembers(t *testing.T) {
	t.Run("concatenates pages in order", func(t *testing.T) {
		dir := &fakeDirectory{pages: map[string]*domain.MemberPage{
			"":   {Logins: []string{"alice", "bob"}, HasNextPage: true, EndCursor: "c1"},
			"c1": {Logins: []string{"carol"}, HasNextPage: true, EndCursor: "c2"},
			"c2": {Logins: []string{"dave"}, HasNextPage: false, EndCursor: "c3"},
		}}

		members, err := EnumerateMembers(context.Background(), dir, "acme")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, members)
		assert.Equal(t, []string{"", "c1", "c2"}, dir.cursors)
	})

	t.Run("empty organization", func(t *testing.T) {
		dir := &fakeDirectory{pages: map[string]*domain.MemberPage{"": {}}}

		members, err := EnumerateMembers(context.Background(), dir, "acme")
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("failure is fatal", func(t *testing.T) {
		dir := &fakeDirectory{err: apperrors.NewAuthError("bad credentials", nil)}

		_, err := EnumerateMembers(context.Background(), dir, "acme")
		assert.True(t, apperrors.IsAuth(err))
		assert.Len(t, dir.cursors, 1)
	})

	t.Run("next page without cursor", func(t *testing.T) {
		dir := &fakeDirectory{pages: map[string]*domain.MemberPage{
			"": {Logins: []string{"alice"}, HasNextPage: true},
		}}

		_, err := EnumerateMembers(context.Background(), dir, "acme")
		assert.True(t, apperrors.IsNetwork(err))
	})

	t.Run("cursor that does not advance", func(t *testing.T) {
		dir := &fakeDirectory{pages: map[string]*domain.MemberPage{
			"":   {Logins: []string{"alice"}, HasNextPage: true, EndCursor: "c1"},
			"c1": {Logins: []string{"bob"}, HasNextPage: true, EndCursor: "c1"},
		}}

		_, err := EnumerateMembers(context.Background(), dir, "acme")
		assert.True(t, apperrors.IsNetwork(err))
	})
}
