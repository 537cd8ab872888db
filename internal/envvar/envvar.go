package envvar

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive-api/internal"
)

//Provider provides access to secret values indirected through the
//`<key>_SECURE` convention.
type Provider interface {
	Get(key string) (string, error)
}

//Configuration reads values from environment variables, falling back
//to the secrets Provider when a `<key>_SECURE` indirection is present.
type Configuration struct {
	provider Provider
}

//Load reads the env filename and loads the key/value pairs into the
//environment, values already present are never overridden.
func Load(filename string) error {
	if filename == "" {
		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "godotenv.Load")
	}

	return nil
}

//New instantiates a Configuration using the received secrets Provider
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

//Get returns the value for key, when `<key>_SECURE` is defined its
//value is used as the lookup argument against the secrets Provider.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(fmt.Sprintf("%s_SECURE", key))
	if valSecret != "" {
		valSecretRes, err := c.provider.Get(valSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "provider.Get")
		}

		res = valSecretRes
	}

	return res, nil
}
