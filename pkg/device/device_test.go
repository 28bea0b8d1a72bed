package device

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/flash"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/secrets"
	"github.com/ectf-pp/decoder/pkg/subscription"
	"github.com/ectf-pp/decoder/pkg/subupdate"
)

func buildTestDevice(t *testing.T) (*Device, ed25519.PrivateKey, *secrets.Secrets) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	s := &secrets.Secrets{}
	copy(s.EncoderPubKey[:], pub)
	if _, err := rand.Read(s.IDKey[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	if _, err := rand.Read(s.LeftTreeKey[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	if _, err := rand.Read(s.RightTreeKey[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	vertices := keytree.CoveringSet(0, 0xFFFF)
	s.Channel0 = subscription.Slot{Channel: 0, Start: 0, End: 0xFFFF, KeyCount: uint32(len(vertices))}
	rootKey := make([]byte, 16)
	for i := range vertices {
		copy(s.Channel0.KTree[i][:], rootKey)
	}

	dev := flash.NewMemory(subscription.PageSize)
	d, err := New(Config{Flash: dev, Secrets: s})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	return d, priv, s
}

func TestBootProvisionsChannel0(t *testing.T) {
	d, _, _ := buildTestDevice(t)

	if slot, err := d.store.Get(0); err != nil || slot.Channel != 0 {
		t.Fatalf("slot 0 after Boot = (%v, %v), want committed channel 0", slot, err)
	}

	resp, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Channel 0 never appears in the list response (it's the build-time
	// default, not a subscribed add-on channel).
	if len(resp) != 4 {
		t.Fatalf("List with no subscriptions returned %d bytes, want 4 (count-only)", len(resp))
	}
}

func TestSubscribeThenList(t *testing.T) {
	d, priv, s := buildTestDevice(t)

	slot := &subscription.Slot{Channel: 3, Start: 50, End: 9000, KeyCount: 1, Magic: subscription.CommitMagic}
	ct, err := ectfcrypto.AEADEncrypt(slot.Encode(), s.IDKey[:])
	if err != nil {
		t.Fatalf("AEADEncrypt: %v", err)
	}
	pkg := &subupdate.Package{DecoderID: 1}
	copy(pkg.Ciphertext[:], ct)
	unsigned := pkg.Encode()[:subupdate.PayloadSize]
	sig := ed25519.Sign(priv, unsigned)
	copy(pkg.Signature[:], sig)

	if err := d.Subscribe(pkg.Encode()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	resp, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp) != 4+20 {
		t.Fatalf("List after one subscribe returned %d bytes, want 24", len(resp))
	}
}
