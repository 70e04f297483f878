package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/session"
)

type fakeAuth struct {
	user      models.User
	err       error
	logoutErr error
	patch     models.UserPatch
	logouts   int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (models.User, error) {
	return f.user, f.err
}

func (f *fakeAuth) Register(ctx context.Context, r models.Registration) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	return models.User{ID: "new", Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuth) Profile(ctx context.Context) (models.User, error) {
	return f.user, f.err
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, firstName, lastName string) (models.UserPatch, error) {
	return f.patch, f.err
}

func ptr[T any](v T) *T { return &v }

var ann = models.User{ID: "u1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}

func TestCheck_FailingEndpointYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client, err := api.New(srv.URL, time.Second, nil)
	require.NoError(t, err)

	s := session.NewStore(client, nil)
	require.Nil(t, s.Check(context.Background()))
	require.False(t, s.LoggedIn())
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client, err := api.New(url, time.Second, nil)
	require.NoError(t, err)

	s := session.NewStore(client, nil)
	require.Nil(t, s.Check(context.Background()))
}

func TestCheck_Success(t *testing.T) {
	s := session.NewStore(&fakeAuth{user: ann}, nil)
	u := s.Check(context.Background())
	require.NotNil(t, u)
	require.Equal(t, ann, *u)
}

func TestLogin_FailureKeepsSessionUnset(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore(&fakeAuth{err: &api.Error{StatusCode: 401, Message: "Invalid credentials"}}, nil)

	u, err := s.Login(ctx, "ann@example.com", "bad")
	require.Nil(t, u)
	var serr *session.Error
	require.True(t, errors.As(err, &serr))
	require.Equal(t, "Invalid credentials", serr.Message)
	require.True(t, api.IsUnauthorized(err))
	require.Nil(t, s.Current())
}

func TestLogin_FallbackMessage(t *testing.T) {
	s := session.NewStore(&fakeAuth{err: errors.New("connection refused")}, nil)
	_, err := s.Login(context.Background(), "a@b.co", "secret")
	require.EqualError(t, err, session.MsgLoginFailed)

	_, err = s.Register(context.Background(), models.Registration{Email: "a@b.co"})
	require.EqualError(t, err, session.MsgRegisterFailed)
}

func TestLogin_ReplacesWholesale(t *testing.T) {
	auth := &fakeAuth{user: ann}
	s := session.NewStore(auth, nil)
	_, err := s.Login(context.Background(), ann.Email, "secret")
	require.NoError(t, err)

	auth.user = models.User{ID: "u2", Email: "bo@example.com"}
	u, err := s.Login(context.Background(), "bo@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, models.User{ID: "u2", Email: "bo@example.com"}, *u)
}

func TestRegister_CarriesNames(t *testing.T) {
	s := session.NewStore(&fakeAuth{}, nil)
	u, err := s.Register(context.Background(), models.Registration{
		Email: "c@d.io", Password: "secret", FirstName: "Cy", LastName: "Do",
	})
	require.NoError(t, err)
	require.Equal(t, "Cy", u.FirstName)
	require.Equal(t, "Do", s.Current().LastName)
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	auth := &fakeAuth{user: ann, logoutErr: errors.New("boom")}
	s := session.NewStore(auth, nil)
	require.NotNil(t, s.Check(context.Background()))

	s.Logout(context.Background())
	require.Nil(t, s.Current())
	require.Equal(t, 1, auth.logouts)
}

func TestUpdateProfile_MergesPresentFields(t *testing.T) {
	auth := &fakeAuth{user: ann, patch: models.UserPatch{FirstName: ptr("Annie")}}
	s := session.NewStore(auth, nil)
	s.Check(context.Background())

	u, err := s.UpdateProfile(context.Background(), "Annie", "Lee")
	require.NoError(t, err)
	require.Equal(t, "Annie", u.FirstName)
	require.Equal(t, "Lee", u.LastName)
	require.Equal(t, ann.Email, u.Email)
	require.Equal(t, ann.ID, u.ID)
}

func TestUpdateProfile_Failure(t *testing.T) {
	auth := &fakeAuth{user: ann}
	s := session.NewStore(auth, nil)
	s.Check(context.Background())

	auth.err = &api.Error{StatusCode: 500}
	_, err := s.UpdateProfile(context.Background(), "X", "Y")
	require.EqualError(t, err, session.MsgUpdateFailed)
	require.Equal(t, "Ann", s.Current().FirstName)
}

func TestUpdateProfile_LoggedOut(t *testing.T) {
	s := session.NewStore(&fakeAuth{}, nil)
	_, err := s.UpdateProfile(context.Background(), "X", "Y")
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := session.NewStore(&fakeAuth{user: ann}, nil)
	s.Check(context.Background())

	u := s.Current()
	u.FirstName = "Mallory"
	require.Equal(t, "Ann", s.Current().FirstName)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := session.NewStore(&fakeAuth{user: ann, patch: models.UserPatch{LastName: ptr("Lee")}}, nil)
	s.Check(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateProfile(context.Background(), "Ann", "Lee")
		}()
		go func() {
			defer wg.Done()
			_ = s.Current()
		}()
	}
	wg.Wait()
	require.Equal(t, "Lee", s.Current().LastName)
}

func TestRefresh_FailureKeepsSession(t *testing.T) {
	auth := &fakeAuth{user: ann}
	s := session.NewStore(auth, nil)
	_, err := s.Login(context.Background(), ann.Email, "secret")
	require.NoError(t, err)

	auth.err = errors.New("boom")
	_, err = s.Refresh(context.Background())
	require.Error(t, err)
	require.Equal(t, ann, *s.Current())

	auth.err = nil
	auth.user.FirstName = "Annie"
	u, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Annie", u.FirstName)
	require.Equal(t, "Annie", s.Current().FirstName)
}
