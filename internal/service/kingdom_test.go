package service

import (
	"context"
	"errors"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/session"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validContent = `{"values":[100,0,0,0,0,0,0,5]}`

func newKingdomService(t *testing.T, ext *fakeExtractor, cfg *config.Config) (*KingdomService, *session.Session, string) {
	t.Helper()
	m := newManager()
	sess, err := m.Create(englishTag)
	require.NoError(t, err)
	if cfg == nil {
		cfg = &config.Config{OpenAIAPIKey: "sk-env"}
	}
	return NewKingdomService(m, ext, &fakeCredentials{}, cfg, zerolog.Nop()), sess, sess.Entries()[0].ID
}

func TestUpload_StoresReading(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, kid := newKingdomService(t, ext, nil)

	entry, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{Data: []byte("img")})
	require.NoError(t, err)
	require.NotNil(t, entry.Reading)
	assert.Equal(t, domain.TroopReading{InfantryT5: 100, SiegeT4: 5}, *entry.Reading)
	assert.Equal(t, "sk-env", ext.gotKey)
}

func TestUpload_FailureKeepsPreviousReading(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, kid := newKingdomService(t, ext, nil)

	_, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{})
	require.NoError(t, err)

	failures := []struct {
		content []byte
		err     error
		kind    scoring.Kind
	}{
		{content: []byte(`{"values":[1,2,3]}`), kind: scoring.KindValidation},
		{content: []byte(`{"values":[1,2,3,4,5,6,7,-8]}`), kind: scoring.KindValidation},
		{content: []byte(`not json`), kind: scoring.KindMalformedPayload},
		{err: &scoring.TransportError{Status: 500, Message: "boom"}, kind: scoring.KindTransport},
	}
	for _, f := range failures {
		ext.content, ext.err = f.content, f.err

		_, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{})
		assert.Equal(t, f.kind, scoring.KindOf(err))

		e, err := sess.Entry(kid)
		require.NoError(t, err)
		require.NotNil(t, e.Reading)
		assert.Equal(t, int64(100), e.Reading.InfantryT5)
	}
}

func TestUpload_MissingCredential(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, kid := newKingdomService(t, ext, &config.Config{})

	_, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{})
	assert.ErrorIs(t, err, scoring.ErrMissingCredential)
	assert.Zero(t, ext.calls)
}

func TestUpload_SavedKeyWins(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, kid := newKingdomService(t, ext, &config.Config{})

	assert.Equal(t, scoring.KindConfiguration, scoring.KindOf(svc.SaveAPIKey(context.Background(), "")))
	require.NoError(t, svc.SaveAPIKey(context.Background(), "sk-saved"))

	_, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{})
	require.NoError(t, err)
	assert.Equal(t, "sk-saved", ext.gotKey)
	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, "sk-saved", svc.prefs.(*fakeCredentials).saved[repository.PrefOpenAIAPIKey])
}

func TestUpload_SupersededResultIsDiscarded(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, kid := newKingdomService(t, ext, nil)

	// A newer upload starts while this one is waiting on the service.
	ext.before = func() {
		ticket, err := sess.BeginUpload(kid)
		require.NoError(t, err)
		require.NoError(t, sess.CommitReading(ticket, domain.TroopReading{CavalryT5: 9}))
	}

	_, err := svc.Upload(context.Background(), sess.ID, kid, api.Image{})
	assert.ErrorIs(t, err, session.ErrUploadSuperseded)

	e, _ := sess.Entry(kid)
	assert.Equal(t, int64(9), e.Reading.CavalryT5)
	assert.Zero(t, e.Reading.InfantryT5)
}

func TestUpload_UnknownIDs(t *testing.T) {
	ext := &fakeExtractor{content: []byte(validContent)}
	svc, sess, _ := newKingdomService(t, ext, nil)

	_, err := svc.Upload(context.Background(), "nope", "k", api.Image{})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = svc.Upload(context.Background(), sess.ID, "nope", api.Image{})
	assert.ErrorIs(t, err, session.ErrKingdomNotFound)
	assert.Zero(t, ext.calls)
}

func TestExtractReading_ExtractorError(t *testing.T) {
	want := errors.New("boom")
	svc, _, _ := newKingdomService(t, &fakeExtractor{err: want}, nil)

	_, err := svc.ExtractReading(context.Background(), api.Image{})
	assert.ErrorIs(t, err, want)
}
