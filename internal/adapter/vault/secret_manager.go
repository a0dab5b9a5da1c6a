package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager reads deployment secrets from HashiCorp Vault. Used when the
// environment opts in; plain env vars remain the default source.
type SecretManager struct {
	client *api.Client
	mount  string
}

func NewSecretManager(address, token, mount string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	if mount == "" {
		mount = "secret/data/aria"
	}
	return &SecretManager{client: client, mount: mount}, nil
}

func (sm *SecretManager) read(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read(sm.mount + "/" + path)
	if err != nil {
		return "", err
	}
	if secret == nil {
		return "", fmt.Errorf("vault: no secret at %s/%s", sm.mount, path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: unexpected secret shape at %s/%s", sm.mount, path)
	}
	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault: missing field %q at %s/%s", field, sm.mount, path)
	}
	return value, nil
}

func (sm *SecretManager) GetDatabaseURL() (string, error) {
	return sm.read("database", "connection_string")
}

func (sm *SecretManager) GetJWTSecret() (string, error) {
	return sm.read("jwt", "secret")
}

func (sm *SecretManager) GetOpenAIKey() (string, error) {
	return sm.read("openai", "api_key")
}

func (sm *SecretManager) GetGeminiKey() (string, error) {
	return sm.read("gemini", "api_key")
}
