package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("Store", func() {
	var (
		persister *session.MemoryPersister
		store     *session.Store
		events    []session.EventKind
	)

	BeforeEach(func() {
		events = nil
		persister = session.NewMemoryPersister("")
		store = session.NewStore(persister, logger.Discard())
		Expect(store.Init()).To(Succeed())
		store.Subscribe(func(e session.Event) { events = append(events, e.Kind) })
	})

	It("should report a missing token", func() {
		_, err := store.Token()
		Expect(err).To(MatchError(internal.ErrMissingToken))
	})

	It("should store and persist a token", func() {
		Expect(store.Save("abc")).To(Succeed())
		token, err := store.Token()
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("abc"))
		Expect(persister.Load()).To(Equal("abc"))
		Expect(events).To(Equal([]session.EventKind{session.EventSignedIn}))
	})

	It("should refuse an empty token", func() {
		Expect(store.Save("")).To(HaveOccurred())
	})

	It("should purge from memory and storage and notify once", func() {
		Expect(store.Save("abc")).To(Succeed())
		Expect(store.Purge()).To(Succeed())
		Expect(store.Purge()).To(Succeed())

		Expect(persister.Load()).To(BeEmpty())
		Expect(events).To(Equal([]session.EventKind{session.EventSignedIn, session.EventSignedOut}))
	})

	It("should stop notifying after unsubscribe", func() {
		var late int
		cancel := store.Subscribe(func(session.Event) { late++ })
		cancel()
		Expect(store.Save("abc")).To(Succeed())
		Expect(late).To(BeZero())
	})

	It("should reject tokens past their exp claim", func() {
		issued := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
		issuer := auth.NewTokenIssuer("secret", time.Hour).WithClock(func() time.Time { return issued })
		token, err := issuer.Issue(auth.Identity{UserID: 1, Email: "a@campus.edu", Role: "admin"})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Save(token)).To(Succeed())

		store.WithClock(func() time.Time { return issued.Add(30 * time.Minute) })
		_, err = store.Token()
		Expect(err).NotTo(HaveOccurred())

		store.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
		_, err = store.Token()
		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("should treat opaque tokens as non-expiring", func() {
		_, ok := session.ExpiresAt("not-a-jwt")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("FilePersister", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "nested", "session.json")
	})

	It("should load nothing when the file is absent", func() {
		token, err := session.NewFilePersister(path).Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(BeEmpty())
	})

	It("should survive a restart with a user-only file", func() {
		Expect(session.NewFilePersister(path).Save("abc")).To(Succeed())

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

		restarted := session.NewStore(session.NewFilePersister(path), logger.Discard())
		Expect(restarted.Init()).To(Succeed())
		Expect(restarted.Token()).To(Equal("abc"))
	})

	It("should clear twice without error", func() {
		p := session.NewFilePersister(path)
		Expect(p.Save("abc")).To(Succeed())
		Expect(p.Clear()).To(Succeed())
		Expect(p.Clear()).To(Succeed())
	})
})
