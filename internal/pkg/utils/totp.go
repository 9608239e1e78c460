package utils

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// QRCodePeriodSeconds is how long a printed/displayed clock code stays valid.
const QRCodePeriodSeconds = 30

var qrCodeOpts = totp.ValidateOpts{
	Period:    QRCodePeriodSeconds,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func GenerateTOTPSecret(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      QRCodePeriodSeconds,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func GenerateTOTPCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, qrCodeOpts)
}

func VerifyTOTP(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, qrCodeOpts)
	if err != nil {
		return false
	}
	return ok
}
