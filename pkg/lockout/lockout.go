// Package lockout implements the persisted attack-lockout countdown: a
// single counter word, held in non-volatile storage, that survives reset
// and gates all normal operation at boot (spec §4.8).
package lockout

import (
	"encoding/binary"
	"time"

	"github.com/pion/logging"

	"github.com/ectf-pp/decoder/pkg/flash"
)

// TimePeriods is the number of periods a lockout counts down from on an
// attack verdict (LOCKOUT_TIME_PD).
const TimePeriods = 60

// PeriodDuration is the wall-clock length of a single period
// (LOCKOUT_PD_US = 100ms), so a full lockout is ≈6 seconds.
const PeriodDuration = 100 * time.Millisecond

// Timer owns the persisted lockout counter.
type Timer struct {
	dev    flash.Device
	addr   uint32
	logger logging.LeveledLogger
	// sleep is overridable by tests so a full lockout doesn't take 6
	// wall-clock seconds; production code leaves it as time.Sleep.
	sleep func(time.Duration)
}

// NewTimer constructs a Timer persisting its counter in the page at addr on
// dev. logger may be nil.
func NewTimer(dev flash.Device, addr uint32, logger logging.LeveledLogger) *Timer {
	return &Timer{
		dev:    dev,
		addr:   addr,
		logger: logger,
		sleep:  time.Sleep,
	}
}

func (t *Timer) readCounter() (uint32, error) {
	page, err := t.dev.ReadPage(t.addr)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(page[:4]), nil
}

func (t *Timer) writeCounter(value uint32) error {
	page := make([]byte, t.dev.PageSize())
	binary.LittleEndian.PutUint32(page[:4], value)
	return t.dev.WritePage(t.addr, page)
}

func (t *Timer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Infof(format, args...)
	}
}

// Process runs the boot-time lockout replay: clamp a corrupted counter back
// to TimePeriods, then sleep out whatever remains, persisting the
// decremented counter every period so a reset mid-countdown resumes rather
// than restarts.
func (t *Timer) Process() error {
	periods, err := t.readCounter()
	if err != nil {
		return err
	}

	if periods > TimePeriods {
		periods = TimePeriods
		if err := t.writeCounter(periods); err != nil {
			return err
		}
	}

	if periods > 0 {
		t.logf("lockout active, %d periods remaining", periods)
	}

	for periods > 0 {
		t.sleep(PeriodDuration)
		periods--
		if err := t.writeCounter(periods); err != nil {
			return err
		}
	}

	// Make sure the persisted value reads back as exactly 0.
	return t.writeCounter(0)
}

// AttackDetected sets the counter to a full lockout and immediately runs
// it out. The device is unresponsive for the full lockout duration and, if
// interrupted by reset, resumes where it left off on the next Process call.
func (t *Timer) AttackDetected() error {
	t.logf("attack detected, entering lockout")
	if err := t.writeCounter(TimePeriods); err != nil {
		return err
	}
	return t.Process()
}
