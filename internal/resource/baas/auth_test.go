package baas_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/resource/baas"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

var _ = Describe("Auth", func() {
	var (
		server  *httptest.Server
		store   *session.Store
		a       *baas.Auth
		apiKeys []string
	)

	BeforeEach(func() {
		apiKeys = nil
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
			apiKeys = append(apiKeys, r.Header.Get("apikey"))
			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"opaque-token","token_type":"bearer"}`))
		})
		mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer opaque-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"u-1","email":"admin@campus.edu","role":"authenticated","user_metadata":{"role":"admin"}}`))
		})
		server = httptest.NewServer(mux)

		store = session.NewStore(session.NewMemoryPersister(""), logger.Discard())
		api := apiclient.New(server.URL, store, logger.Discard(), apiclient.WithHeader("apikey", "anon-key"))
		a = baas.NewAuth(api, store, logger.Discard())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should store the access token and prefer the metadata role", func() {
		identity, err := a.SignIn(context.Background(), auth.LoginDTO{Email: "admin@campus.edu", Password: "secret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(identity).To(Equal(auth.Identity{Email: "admin@campus.edu", Role: "admin"}))
		Expect(store.Token()).To(Equal("opaque-token"))
		Expect(apiKeys).To(Equal([]string{"anon-key"}))
	})

	It("should leave the store empty on bad credentials", func() {
		_, err := a.SignIn(context.Background(), auth.LoginDTO{Email: "admin@campus.edu", Password: "nope"})
		Expect(err).To(HaveOccurred())
		_, err = store.Token()
		Expect(err).To(MatchError(internal.ErrMissingToken))
	})

	It("should notify listeners on sign-in and sign-out", func() {
		var kinds []session.EventKind
		cancel := a.OnAuthStateChange(func(evt session.Event) { kinds = append(kinds, evt.Kind) })
		defer cancel()

		_, err := a.SignIn(context.Background(), auth.LoginDTO{Email: "admin@campus.edu", Password: "secret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.SignOut()).To(Succeed())
		Expect(kinds).To(Equal([]session.EventKind{session.EventSignedIn, session.EventSignedOut}))
	})

	It("should purge a token the service no longer accepts", func() {
		Expect(store.Save("revoked")).To(Succeed())
		_, err := a.GetSession(context.Background())
		Expect(err).To(MatchError(internal.ErrTokenRejected))
		_, err = store.Token()
		Expect(err).To(MatchError(internal.ErrMissingToken))
	})
})
