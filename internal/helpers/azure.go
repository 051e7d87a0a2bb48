package helpers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/organization"
)

// TenantDetails holds the Entra ID tenant identity.
type TenantDetails struct {
	TenantName string `json:"tenantName"`
	TenantID   string `json:"tenantId"`
}

// GetTenantDetails looks up the tenant through the Graph organization
// endpoint.
func GetTenantDetails(ctx context.Context, sess *Session) (*TenantDetails, error) {
	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	graphClient, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph client: %w", err)
	}

	org, err := graphClient.Organization().Get(ctx, &organization.OrganizationRequestBuilderGetRequestConfiguration{})
	if err != nil {
		return nil, fmt.Errorf("failed to get organization details: %w", err)
	}

	details := &TenantDetails{TenantName: "Unknown", TenantID: "Unknown"}
	if orgValue := org.GetValue(); len(orgValue) > 0 {
		if displayName := orgValue[0].GetDisplayName(); displayName != nil {
			details.TenantName = *displayName
		}
		if id := orgValue[0].GetId(); id != nil {
			details.TenantID = *id
		}
	}

	return details, nil
}

// ListSubscriptions returns all subscription IDs accessible to the caller.
func ListSubscriptions(ctx context.Context, sess *Session) ([]string, error) {
	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	subsClient, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	var subscriptionIDs []string
	pager := subsClient.NewListPager(nil)

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}

		for _, sub := range page.Value {
			if sub.SubscriptionID == nil {
				continue
			}
			slog.Debug("Found subscription",
				slog.String("id", *sub.SubscriptionID),
				slog.String("state", subscriptionState(sub)))
			subscriptionIDs = append(subscriptionIDs, *sub.SubscriptionID)
		}
	}

	if len(subscriptionIDs) == 0 {
		return nil, fmt.Errorf("no accessible subscriptions found")
	}

	return subscriptionIDs, nil
}

func subscriptionState(sub *armsubscriptions.Subscription) string {
	if sub.State == nil {
		return "Unknown"
	}
	return string(*sub.State)
}

// ResolveSubscriptions expands the subscription option: "all" becomes every
// accessible subscription, anything else is taken verbatim.
func ResolveSubscriptions(ctx context.Context, sess *Session, subscription string) ([]string, error) {
	if subscription == "all" || subscription == "ALL" {
		return ListSubscriptions(ctx, sess)
	}
	return []string{subscription}, nil
}

// NewResourcesClient creates an ARM resources client for a subscription.
func NewResourcesClient(sess *Session, subscriptionID string) (*armresources.Client, error) {
	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	client, err := armresources.NewClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource client: %w", err)
	}
	return client, nil
}
