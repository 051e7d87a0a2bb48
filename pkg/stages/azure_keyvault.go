package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/pool"
)

// HarvestedSecret is one readable Key Vault secret. Values stay out of the
// console path; they only appear in file output.
type HarvestedSecret struct {
	Vault   string `json:"vault"`
	Name    string `json:"name"`
	Value   string `json:"value,omitempty"`
	Enabled bool   `json:"enabled"`
}

// VaultResult groups the secrets read from one vault.
type VaultResult struct {
	Vault       string            `json:"vault"`
	VaultURL    string            `json:"vaultUrl"`
	SecretCount int               `json:"secretCount"`
	Secrets     []HarvestedSecret `json:"secrets"`
}

// KeyVaultReport is the module output.
type KeyVaultReport struct {
	Subscription string        `json:"subscription"`
	Vaults       []VaultResult `json:"vaults"`
	Summary      pool.Summary  `json:"summary"`
}

// HarvestKeyVaults lists every Key Vault in the subscription via ARM, then
// fans out per-vault secret reads. A vault that denies access is a failed
// unit; it never aborts the remaining vaults.
func HarvestKeyVaults(ctx context.Context, sess *helpers.Session, subscription string, throttle int) (*KeyVaultReport, error) {
	vaults, err := listKeyVaults(ctx, sess, subscription)
	if err != nil {
		return nil, err
	}

	if throttle <= 0 {
		throttle = sess.Config.ThrottleLimit
	}

	message.Info("Harvesting secrets from %d key vaults in subscription %s", len(vaults), subscription)

	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	outcomes, summary := pool.Run(ctx, vaults, throttle,
		func(ctx context.Context, vault string) (*VaultResult, error) {
			vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vault)

			client, err := azsecrets.NewClient(vaultURL, cred, nil)
			if err != nil {
				return nil, fmt.Errorf("vault %s: %w", vault, err)
			}

			result := &VaultResult{Vault: vault, VaultURL: vaultURL, Secrets: []HarvestedSecret{}}

			pager := client.NewListSecretPropertiesPager(nil)
			for pager.More() {
				page, err := pager.NextPage(ctx)
				if err != nil {
					return nil, fmt.Errorf("vault %s: list secrets: %w", vault, err)
				}

				for _, props := range page.Value {
					if props == nil || props.ID == nil {
						continue
					}
					name := props.ID.Name()

					secret := HarvestedSecret{Vault: vault, Name: name}
					if props.Attributes != nil && props.Attributes.Enabled != nil {
						secret.Enabled = *props.Attributes.Enabled
					}

					// Read the value; a denied read still records the secret's existence.
					if resp, err := client.GetSecret(ctx, name, "", nil); err == nil && resp.Value != nil {
						secret.Value = *resp.Value
					} else if err != nil {
						slog.Debug("Secret value not readable",
							slog.String("vault", vault),
							slog.String("secret", name),
							slog.String("error", err.Error()))
					}

					result.Secrets = append(result.Secrets, secret)
				}
			}

			result.SecretCount = len(result.Secrets)
			return result, nil
		})

	report := &KeyVaultReport{Subscription: subscription, Vaults: []VaultResult{}, Summary: summary}
	for _, result := range pool.Successes(outcomes) {
		if result != nil {
			report.Vaults = append(report.Vaults, *result)
		}
	}
	for _, failed := range pool.Failures(outcomes) {
		message.Warning("Vault %s failed: %v", failed.Input, failed.Err)
	}

	return report, nil
}

// listKeyVaults enumerates vault names via ARM, cached in the AzBatch
// partition.
func listKeyVaults(ctx context.Context, sess *helpers.Session, subscription string) ([]string, error) {
	key := helpers.BatchFingerprint("keyvaults", subscription)

	if !sess.NoCache {
		var cached []string
		if sess.Cache.GetInto(helpers.CachePartitionAzBatch, key, &cached) {
			slog.Debug("Key vault list cache hit", slog.String("subscription", subscription))
			return cached, nil
		}
	}

	client, err := helpers.NewResourcesClient(sess, subscription)
	if err != nil {
		return nil, err
	}

	var vaults []string
	pager := client.NewListPager(&armresources.ClientListOptions{
		Filter: to.Ptr("resourceType eq 'Microsoft.KeyVault/vaults'"),
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list key vaults: %w", err)
		}
		for _, resource := range page.Value {
			if resource.Name != nil {
				vaults = append(vaults, *resource.Name)
			}
		}
	}

	if err := sess.Cache.Set(helpers.CachePartitionAzBatch, key, vaults); err != nil {
		slog.Debug("Key vault list cache store skipped", slog.String("reason", err.Error()))
	}

	return vaults, nil
}
