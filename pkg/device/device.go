// Package device is the composition root: it owns the persisted
// subscription table, the lockout timer, and the decode/subupdate
// pipelines, and dispatches the three host commands the way the
// distilled main loop does (spec §4.9).
package device

import (
	"errors"

	"github.com/pion/logging"

	"github.com/ectf-pp/decoder/pkg/decode"
	"github.com/ectf-pp/decoder/pkg/fishield"
	"github.com/ectf-pp/decoder/pkg/flash"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/lockout"
	"github.com/ectf-pp/decoder/pkg/secrets"
	"github.com/ectf-pp/decoder/pkg/subscription"
	"github.com/ectf-pp/decoder/pkg/subupdate"
)

// ErrFlashRequired is returned by Validate when no flash.Device is
// configured.
var ErrFlashRequired = errors.New("device: Flash is required")

// ErrSecretsRequired is returned by Validate when no provisioned secrets
// are configured.
var ErrSecretsRequired = errors.New("device: Secrets is required")

// LockoutAddr is the flash page address the lockout counter is persisted
// at; SubscriptionBaseAddr is the first of MaxChannelCount consecutive
// pages holding the subscription table.
const (
	LockoutAddr          = 0
	SubscriptionBaseAddr = subscription.PageSize
)

// Config configures a Device. Flash and Secrets are required;
// LoggerFactory is optional.
type Config struct {
	Flash         flash.Device
	Secrets       *secrets.Secrets
	LoggerFactory logging.LoggerFactory
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Flash == nil {
		return ErrFlashRequired
	}
	if c.Secrets == nil {
		return ErrSecretsRequired
	}
	return nil
}

// Device is the top-level decoder: the subscription store, the entropy
// pool, the lockout timer, and the two content pipelines, all wired
// together and exposed as three command handlers.
type Device struct {
	config Config
	log    logging.LeveledLogger

	store   *subscription.Store
	pool    *fishield.Pool
	lockout *lockout.Timer
	decoder *decode.Decoder
	updater *subupdate.Applier
}

// New constructs a Device from config. It does not run the boot-time
// lockout replay or provision channel 0; call Boot for that.
func New(config Config) (*Device, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Device{config: config}
	if config.LoggerFactory != nil {
		d.log = config.LoggerFactory.NewLogger("device")
	}

	// The key-tree side constants are process-wide (the tree derivation
	// helper takes no device reference), so provisioning them is a
	// one-time side effect of constructing the first Device.
	copy(keytree.LeftSideConst[:], config.Secrets.LeftTreeKey[:])
	copy(keytree.RightSideConst[:], config.Secrets.RightTreeKey[:])

	d.store = subscription.NewStore(config.Flash, SubscriptionBaseAddr)
	d.pool = fishield.NewPool(fishield.DefaultTRNG{})
	d.lockout = lockout.NewTimer(config.Flash, LockoutAddr, d.log)

	d.decoder = &decode.Decoder{
		Store:         d.store,
		Pool:          d.pool,
		Lockout:       d.lockout,
		EncoderPubKey: config.Secrets.EncoderPubKey,
		Logger:        d.log,
	}
	d.updater = &subupdate.Applier{
		Store:         d.store,
		Lockout:       d.lockout,
		EncoderPubKey: config.Secrets.EncoderPubKey,
		IDKey:         config.Secrets.IDKey,
		Logger:        d.log,
	}

	return d, nil
}

// PageSize is the flash page size this device's storage layout requires.
func PageSize() int { return subscription.PageSize }

// FlashImageSize is the total flash image size a file-backed device needs
// to hold the lockout counter page and the full subscription table.
func FlashImageSize() int64 {
	return int64(SubscriptionBaseAddr) + int64(subscription.MaxChannelCount)*int64(subscription.PageSize)
}

func (d *Device) logf(format string, args ...any) {
	if d.log != nil {
		d.log.Infof(format, args...)
	}
}
