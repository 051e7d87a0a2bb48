package options

import (
	"regexp"

	"github.com/praetorian-inc/blackcat/pkg/types"
)

var subscriptionFormat = regexp.MustCompile(`(?i)^([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|all)$`)

var AzureSubscriptionOpt = types.Option{
	Name:        "subscription",
	Short:       "s",
	Description: "Azure subscription ID or 'all' for all accessible subscriptions",
	Required:    true,
	Type:        types.String,
	ValueFormat: subscriptionFormat,
}

var AzureTenantOpt = types.Option{
	Name:        "tenant",
	Description: "Entra ID tenant domain or ID",
	Type:        types.String,
}

var WordlistOpt = types.Option{
	Name:        "wordlist",
	Short:       "w",
	Description: "Path to a candidate-name wordlist, one name per line",
	Required:    true,
	Type:        types.String,
}

var StorageAccountOpt = types.Option{
	Name:        "account",
	Short:       "a",
	Description: "Storage account name, or comma-separated list of names",
	Required:    true,
	Type:        types.String,
}

var GraphPathOpt = types.Option{
	Name:        "path",
	Short:       "p",
	Description: "Microsoft Graph resource path, e.g. /v1.0/users",
	Required:    true,
	Type:        types.String,
}

var NoCacheOpt = types.Option{
	Name:        "no-cache",
	Description: "Bypass the response cache for this run",
	Type:        types.Bool,
	Value:       "false",
}
