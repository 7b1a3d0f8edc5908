package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// SASL mechanisms.
const (
	MechanismPlain       = "PLAIN"
	MechanismScramSHA256 = "SCRAM-SHA-256"
	MechanismScramSHA512 = "SCRAM-SHA-512"
)

// SecurityConfig holds broker authentication settings shared by readers and
// writers.  The zero value connects in plaintext without SASL.
type SecurityConfig struct {
	SASLMechanism string `mapstructure:"sasl_mechanism"`
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
	TLSCAPath     string `mapstructure:"tls_ca_path"`
}

// Validate checks that the configured mechanism has credentials.
func (s SecurityConfig) Validate() error {
	if s.SASLMechanism == "" {
		return nil
	}
	switch s.SASLMechanism {
	case MechanismPlain, MechanismScramSHA256, MechanismScramSHA512:
	default:
		return errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(s.SASLMechanism)
	}
	if s.SASLUsername == "" || s.SASLPassword == "" {
		return errors.New(errors.ErrCodeValidation, "SASL credentials required")
	}
	return nil
}

func (s SecurityConfig) mechanism() (sasl.Mechanism, error) {
	var (
		mech sasl.Mechanism
		err  error
	)
	switch s.SASLMechanism {
	case "":
		return nil, nil
	case MechanismPlain:
		mech = plain.Mechanism{Username: s.SASLUsername, Password: s.SASLPassword}
	case MechanismScramSHA256:
		mech, err = scram.Mechanism(scram.SHA256, s.SASLUsername, s.SASLPassword)
	case MechanismScramSHA512:
		mech, err = scram.Mechanism(scram.SHA512, s.SASLUsername, s.SASLPassword)
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(s.SASLMechanism)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create SASL mechanism")
	}
	return mech, nil
}

// tlsConfig returns nil when TLS is disabled.  Without a CA path the system
// roots are used.
func (s SecurityConfig) tlsConfig() (*tls.Config, error) {
	if !s.TLSEnabled {
		return nil, nil
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if s.TLSCAPath == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(s.TLSCAPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read TLS CA file")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New(errors.ErrCodeValidation, "no certificates in TLS CA file").WithDetail(s.TLSCAPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

//Personal.AI order the ending
