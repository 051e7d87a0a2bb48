package cmd

import (
	"fmt"
	"strings"

	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
	o "github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/pool"
	"github.com/praetorian-inc/blackcat/pkg/stages"
	"github.com/praetorian-inc/blackcat/pkg/types"
	"github.com/spf13/cobra"
)

var subdomainsMetadata = types.Metadata{
	Id:          "subdomains",
	Name:        "Subdomain Brute Force",
	Description: "Brute force tenant-chosen names across Azure service DNS zones",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Stealth,
	References: []string{
		"https://learn.microsoft.com/en-us/azure/storage/blobs/storage-blobs-introduction",
	},
}

var subdomainsOptions = []*types.Option{
	&o.WordlistOpt,
	types.WithDescription(o.ThrottleOpt, "Maximum number of concurrent DNS lookups"),
	{Name: "services", Description: "Comma-separated service labels to scan (default all)", Type: types.String},
}

var subdomainsCmd = &cobra.Command{
	Use:   "subdomains",
	Short: subdomainsMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, subdomainsOptions)
		if err != nil {
			return err
		}

		words, err := stages.ReadWordlist(o.String(o.WordlistOpt.Name, opts, ""))
		if err != nil {
			return err
		}

		var services []string
		if raw := o.String("services", opts, ""); raw != "" {
			services = strings.Split(raw, ",")
		}

		sess := newSession(cmd)
		message.Section(subdomainsMetadata.Name)

		report, err := stages.EnumerateSubdomains(cmd.Context(), sess, stages.SubdomainScan{
			Words:    words,
			Services: services,
			Throttle: o.Int(o.ThrottleOpt.Name, opts, cfg.ThrottleLimit),
		})
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		writeResult(providers, types.NewResult(types.Azure, subdomainsMetadata.Id, report))
		printSummary(report.Summary)
		return nil
	},
}

var storageBlobsMetadata = types.Metadata{
	Id:          "storage-blobs",
	Name:        "Public Blob Discovery",
	Description: "Discover anonymously listable storage containers and their blobs",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Stealth,
	References: []string{
		"https://learn.microsoft.com/en-us/rest/api/storageservices/list-blobs",
	},
}

var storageBlobsOptions = []*types.Option{
	&o.StorageAccountOpt,
	&o.WordlistOpt,
	types.WithDescription(o.ThrottleOpt, "Maximum number of concurrent HTTP probes"),
}

var storageBlobsCmd = &cobra.Command{
	Use:   "storage-blobs",
	Short: storageBlobsMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, storageBlobsOptions)
		if err != nil {
			return err
		}

		containers, err := stages.ReadWordlist(o.String(o.WordlistOpt.Name, opts, ""))
		if err != nil {
			return err
		}

		sess := newSession(cmd)
		message.Section(storageBlobsMetadata.Name)

		report, err := stages.DiscoverPublicBlobs(cmd.Context(), sess, stages.BlobScan{
			Accounts:   strings.Split(o.String(o.StorageAccountOpt.Name, opts, ""), ","),
			Containers: containers,
			Throttle:   o.Int(o.ThrottleOpt.Name, opts, cfg.ThrottleLimit),
		})
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		writeResult(providers, types.NewResult(types.Azure, storageBlobsMetadata.Id, report))
		printSummary(report.Summary)
		return nil
	},
}

var keyVaultsMetadata = types.Metadata{
	Id:          "key-vaults",
	Name:        "Key Vault Secrets",
	Description: "Enumerate key vaults and harvest readable secrets",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Moderate,
	References: []string{
		"https://learn.microsoft.com/en-us/azure/key-vault/general/overview",
	},
}

var keyVaultsOptions = []*types.Option{
	&o.AzureSubscriptionOpt,
	types.WithDefaultValue(o.ThrottleOpt, "25"),
	&o.NoCacheOpt,
}

var keyVaultsCmd = &cobra.Command{
	Use:   "key-vaults",
	Short: keyVaultsMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, keyVaultsOptions)
		if err != nil {
			return err
		}

		sess := newSession(cmd)
		message.Section(keyVaultsMetadata.Name)

		subscriptions, err := helpers.ResolveSubscriptions(cmd.Context(), sess,
			o.String(o.AzureSubscriptionOpt.Name, opts, ""))
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		throttle := o.Int(o.ThrottleOpt.Name, opts, cfg.ThrottleLimit)

		for _, subscription := range subscriptions {
			report, err := stages.HarvestKeyVaults(cmd.Context(), sess, subscription, throttle)
			if err != nil {
				message.Error("Subscription %s failed: %v", subscription, err)
				continue
			}
			writeResult(providers, types.NewResult(types.Azure, keyVaultsMetadata.Id, report,
				types.WithFilename(fmt.Sprintf("blackcat-key-vaults-%s.json", subscription))))
			printSummary(report.Summary)
		}
		return nil
	},
}

var roleAssignmentsMetadata = types.Metadata{
	Id:          "role-assignments",
	Name:        "Role Assignments",
	Description: "Enumerate RBAC role assignments across accessible subscriptions",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Stealth,
	References: []string{
		"https://learn.microsoft.com/en-us/azure/role-based-access-control/overview",
	},
}

var roleAssignmentsOptions = []*types.Option{
	&o.AzureSubscriptionOpt,
	&o.ThrottleOpt,
	&o.NoCacheOpt,
}

var roleAssignmentsCmd = &cobra.Command{
	Use:   "role-assignments",
	Short: roleAssignmentsMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, roleAssignmentsOptions)
		if err != nil {
			return err
		}

		sess := newSession(cmd)
		message.Section(roleAssignmentsMetadata.Name)

		subscriptions, err := helpers.ResolveSubscriptions(cmd.Context(), sess,
			o.String(o.AzureSubscriptionOpt.Name, opts, ""))
		if err != nil {
			return err
		}

		report, err := stages.CollectRoleAssignments(cmd.Context(), sess, subscriptions,
			o.Int(o.ThrottleOpt.Name, opts, cfg.ThrottleLimit))
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		writeResult(providers, types.NewResult(types.Azure, roleAssignmentsMetadata.Id, report))
		printSummary(report.Summary)
		return nil
	},
}

var tenantMetadata = types.Metadata{
	Id:          "tenant",
	Name:        "Tenant Details",
	Description: "Resolve the Entra ID tenant name and ID for the current credentials",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Stealth,
	References: []string{
		"https://learn.microsoft.com/en-us/graph/api/organization-get",
	},
}

var tenantOptions = []*types.Option{
	&o.AzureTenantOpt,
}

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: tenantMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, tenantOptions)
		if err != nil {
			return err
		}

		sess := newSession(cmd)
		sess.TenantID = o.String(o.AzureTenantOpt.Name, opts, "")
		message.Section(tenantMetadata.Name)

		details, err := helpers.GetTenantDetails(cmd.Context(), sess)
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		writeResult(providers, types.NewResult(types.Azure, tenantMetadata.Id, details))
		return nil
	},
}

var graphMetadata = types.Metadata{
	Id:          "graph",
	Name:        "Graph Query",
	Description: "Run a raw Microsoft Graph GET with paging and response caching",
	Platform:    types.Azure,
	Authors:     []string{"Praetorian"},
	OpsecLevel:  types.Stealth,
	References: []string{
		"https://learn.microsoft.com/en-us/graph/use-the-api",
	},
}

var graphOptions = []*types.Option{
	&o.GraphPathOpt,
	{Name: "filter", Description: "OData $filter expression", Type: types.String},
	{Name: "select", Description: "OData $select fields", Type: types.String},
	&o.NoCacheOpt,
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: graphMetadata.Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := getOpts(cmd, graphOptions)
		if err != nil {
			return err
		}

		query := map[string]string{}
		if filter := o.String("filter", opts, ""); filter != "" {
			query["$filter"] = filter
		}
		if fields := o.String("select", opts, ""); fields != "" {
			query["$select"] = fields
		}

		sess := newSession(cmd)
		message.Section(graphMetadata.Name)

		report, err := stages.QueryGraph(cmd.Context(), sess,
			o.String(o.GraphPathOpt.Name, opts, ""), query)
		if err != nil {
			return err
		}

		providers := renderProviders(defaultProviders, opts)
		writeResult(providers, types.NewResult(types.Azure, graphMetadata.Id, report))
		return nil
	},
}

func printSummary(summary pool.Summary) {
	if summary.RunID == "" {
		// Served from cache, no batch ran.
		return
	}
	if summary.Failed > 0 {
		message.Warning("Run %s: %d attempted, %d succeeded, %d failed (%.1fs)",
			summary.RunID, summary.Attempted, summary.Succeeded, summary.Failed,
			summary.Elapsed.Seconds())
		return
	}
	message.Success("Run %s: %d attempted, %d succeeded (%.1fs)",
		summary.RunID, summary.Attempted, summary.Succeeded, summary.Elapsed.Seconds())
}

func init() {
	options2Flag(subdomainsOptions, subdomainsCmd)
	options2Flag(storageBlobsOptions, storageBlobsCmd)
	options2Flag(keyVaultsOptions, keyVaultsCmd)
	options2Flag(roleAssignmentsOptions, roleAssignmentsCmd)
	options2Flag(tenantOptions, tenantCmd)
	options2Flag(graphOptions, graphCmd)

	azureReconCmd.AddCommand(subdomainsCmd)
	azureReconCmd.AddCommand(storageBlobsCmd)
	azureReconCmd.AddCommand(keyVaultsCmd)
	azureReconCmd.AddCommand(roleAssignmentsCmd)
	azureReconCmd.AddCommand(tenantCmd)
	azureReconCmd.AddCommand(graphCmd)
}
