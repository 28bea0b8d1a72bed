package subupdate

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/flash"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

type spyLockout struct{ calls int }

func (s *spyLockout) AttackDetected() error {
	s.calls++
	return nil
}

func buildApplier(t *testing.T) (*Applier, ed25519.PrivateKey, [ectfcrypto.AEADKeySize]byte, *subscription.Store) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var idKey [ectfcrypto.AEADKeySize]byte
	if _, err := rand.Read(idKey[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	store := subscription.NewStore(flash.NewMemory(subscription.PageSize), 0)

	a := &Applier{Store: store, Lockout: &spyLockout{}, IDKey: idKey}
	copy(a.EncoderPubKey[:], pub)
	return a, priv, idKey, store
}

func buildPackage(t *testing.T, priv ed25519.PrivateKey, idKey [ectfcrypto.AEADKeySize]byte, slot *subscription.Slot) *Package {
	t.Helper()
	slot.Magic = subscription.CommitMagic

	ct, err := ectfcrypto.AEADEncrypt(slot.Encode(), idKey[:])
	if err != nil {
		t.Fatalf("AEADEncrypt: %v", err)
	}

	pkg := &Package{DecoderID: 1}
	copy(pkg.Ciphertext[:], ct)
	sig := ed25519.Sign(priv, pkg.payload())
	copy(pkg.Signature[:], sig)
	return pkg
}

func TestApplyNewChannel(t *testing.T) {
	a, priv, idKey, store := buildApplier(t)
	slot := &subscription.Slot{Channel: 5, Start: 10, End: 20, KeyCount: 1}
	pkg := buildPackage(t, priv, idKey, slot)

	if err := a.Apply(pkg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	idx, got, err := store.GetByChannel(5)
	if err != nil {
		t.Fatalf("GetByChannel: %v", err)
	}
	if idx == 0 {
		t.Fatalf("channel 5 landed in reserved slot 0")
	}
	if got.Start != 10 || got.End != 20 {
		t.Fatalf("stored slot = %+v, want start=10 end=20", got)
	}
}

func TestApplyReplacesExistingChannel(t *testing.T) {
	a, priv, idKey, store := buildApplier(t)

	first := &subscription.Slot{Channel: 5, Start: 10, End: 20, KeyCount: 1}
	if err := a.Apply(buildPackage(t, priv, idKey, first)); err != nil {
		t.Fatalf("first Apply: %v", err)
	}

	second := &subscription.Slot{Channel: 5, Start: 100, End: 200, KeyCount: 1}
	if err := a.Apply(buildPackage(t, priv, idKey, second)); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	count := 0
	for i := 1; i < subscription.MaxChannelCount; i++ {
		if _, err := store.Get(i); err == nil {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one committed slot for channel 5, found %d", count)
	}

	_, got, err := store.GetByChannel(5)
	if err != nil {
		t.Fatalf("GetByChannel: %v", err)
	}
	if got.Start != 100 || got.End != 200 {
		t.Fatalf("stored slot = %+v, want start=100 end=200", got)
	}
}

func TestApplyRejectsChannelZero(t *testing.T) {
	a, priv, idKey, _ := buildApplier(t)
	slot := &subscription.Slot{Channel: 0, Start: 10, End: 20, KeyCount: 1}

	err := a.Apply(buildPackage(t, priv, idKey, slot))
	if err != ErrBenign {
		t.Fatalf("Apply channel 0 = %v, want ErrBenign", err)
	}
}

func TestApplyRejectsInvertedRangeAsAttack(t *testing.T) {
	a, priv, idKey, _ := buildApplier(t)
	spy := a.Lockout.(*spyLockout)
	slot := &subscription.Slot{Channel: 5, Start: 20, End: 10, KeyCount: 1}

	err := a.Apply(buildPackage(t, priv, idKey, slot))
	if err != ErrAttack {
		t.Fatalf("Apply inverted range = %v, want ErrAttack", err)
	}
	if spy.calls != 1 {
		t.Fatalf("lockout called %d times, want 1", spy.calls)
	}
}

func TestApplyBadSignatureIsAttack(t *testing.T) {
	a, _, idKey, _ := buildApplier(t)
	slot := &subscription.Slot{Channel: 5, Start: 10, End: 20, KeyCount: 1, Magic: subscription.CommitMagic}
	ct, err := ectfcrypto.AEADEncrypt(slot.Encode(), idKey[:])
	if err != nil {
		t.Fatalf("AEADEncrypt: %v", err)
	}
	pkg := &Package{DecoderID: 1}
	copy(pkg.Ciphertext[:], ct)
	if _, err := rand.Read(pkg.Signature[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	if err := a.Apply(pkg); err != ErrAttack {
		t.Fatalf("Apply with forged signature = %v, want ErrAttack", err)
	}
}

func TestApplyTableFullIsBenign(t *testing.T) {
	a, priv, idKey, _ := buildApplier(t)

	for ch := uint32(1); ch < subscription.MaxChannelCount; ch++ {
		slot := &subscription.Slot{Channel: ch, Start: 1, End: 2, KeyCount: 1}
		if err := a.Apply(buildPackage(t, priv, idKey, slot)); err != nil {
			t.Fatalf("Apply channel %d: %v", ch, err)
		}
	}

	overflow := &subscription.Slot{Channel: 999, Start: 1, End: 2, KeyCount: 1}
	err := a.Apply(buildPackage(t, priv, idKey, overflow))
	if err != ErrBenign {
		t.Fatalf("Apply when table full = %v, want ErrBenign", err)
	}
}
