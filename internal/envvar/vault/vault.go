package vault

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"

	"github.com/taskhive/taskhive-api/internal"
)

//Provider reads secrets from a Vault KV version 2 engine.
type Provider struct {
	client *api.Client
	path   string

	mutex   sync.RWMutex
	secrets map[string]map[string]interface{}
}

//New instantiates the Vault provider, path refers to the mount path of
//the KV engine.
func New(token, addr, path string) (*Provider, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		client:  client,
		path:    path,
		secrets: make(map[string]map[string]interface{}),
	}, nil
}

//Get reads the secret referred by key, expressed as `<secret path>:<field>`
func (p *Provider) Get(key string) (string, error) {
	path, field, found := strings.Cut(key, ":")
	if !found {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "missing field in %q", key)
	}

	data, err := p.read(path)
	if err != nil {
		return "", err
	}

	value, ok := data[field]
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "field %q not found in %q", field, path)
	}

	res, ok := value.(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeUnknown, "field %q is not a string", field)
	}

	return res, nil
}

func (p *Provider) read(path string) (map[string]interface{}, error) {
	p.mutex.RLock()
	cached, ok := p.secrets[path]
	p.mutex.RUnlock()

	if ok {
		return cached, nil
	}

	secret, err := p.client.Logical().Read(fmt.Sprintf("%s/data%s", p.path, path))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Logical.Read")
	}

	if secret == nil || secret.Data == nil {
		return nil, internal.NewErrorf(internal.ErrorCodeNotFound, "secret %q not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "unexpected secret payload for %q", path)
	}

	p.mutex.Lock()
	p.secrets[path] = data
	p.mutex.Unlock()

	return data, nil
}
