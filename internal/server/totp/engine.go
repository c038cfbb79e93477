// Package totp implements the time-based one-time-password engine:
// enrollment secret generation, provisioning URIs for authenticator apps,
// and code verification with a bounded clock-skew window.
package totp

import (
	"bytes"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	ptotp "github.com/pquerna/otp/totp"
)

const (
	// secretSize is the number of random bytes in a generated shared
	// secret (160 bits before base32 encoding).
	secretSize = 20

	// period is the standard TOTP time step.
	period = 30 * time.Second

	// skewSteps bounds clock-drift tolerance to one adjacent step on each
	// side. Keeping the window fixed and small is what limits replay of a
	// sliding code; widening it trades security for convenience.
	skewSteps = 1

	qrSize = 200
)

// Enrollment is the material issued to a registering user: the shared
// secret, the otpauth provisioning URI and a PNG rendering of it for
// authenticator apps to scan.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	QRPNG           []byte
}

// Engine generates and verifies TOTP codes for a fixed issuer.
type Engine struct {
	issuer string
}

func NewEngine(issuer string) *Engine {
	return &Engine{issuer: issuer}
}

// GenerateSecret produces a fresh random shared secret for the given
// account name and the provisioning URI encoding algorithm, secret and
// label.
func (e *Engine) GenerateSecret(account string) (*Enrollment, error) {
	key, err := ptotp.Generate(ptotp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: account,
		SecretSize:  secretSize,
	})
	if err != nil {
		return nil, err
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRPNG:           buf.Bytes(),
	}, nil
}

// Verify reports whether code is valid for secret at the given time. The
// code for the current 30-second step and for one step on either side is
// accepted, tolerating small clock drift between generator and verifier.
//
// A code is not remembered once accepted: within its window the same code
// verifies again. A hardened deployment would track used steps per user;
// see the design notes.
func (e *Engine) Verify(secret, code string, now time.Time) bool {
	ok, err := ptotp.ValidateCustom(code, secret, now, ptotp.ValidateOpts{
		Period:    uint(period.Seconds()),
		Skew:      skewSteps,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
