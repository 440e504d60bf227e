package password

import "github.com/Alijeyrad/medibook_backend/config"

// Params defines the Argon2id parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follows the OWASP recommendation for Argon2id.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// LowMemoryParams trades memory for iterations on constrained hosts.
func LowMemoryParams() Params {
	return Params{
		Memory:      32 * 1024,
		Iterations:  4,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func FromCentralConfig(c config.PasswordConfig) Params {
	if c.LowMemoryMode {
		return LowMemoryParams()
	}
	return DefaultParams()
}
