package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-membership/internal/domain"
)

// AccountRepo provides typed DynamoDB operations for the user_accounts
// table. Username, email, and verification-key lookups go through sparse
// GSIs; certificate and linked-account lookups scan with a contains filter
// over derived attributes, which is fine at membership-table scale.
type AccountRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccountRepo(client *dynamodb.Client, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

func (r *AccountRepo) Create() *domain.UserAccount {
	return &domain.UserAccount{}
}

// toItem marshals the aggregate and adds the derived lookup attributes the
// indexes and filters key on.
func (r *AccountRepo) toItem(a *domain.UserAccount) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return nil, fmt.Errorf("marshal account: %w", err)
	}
	item["tenant_username"] = &types.AttributeValueMemberS{Value: compositeValue(a.Tenant, a.Username)}
	if a.Email != "" {
		item["tenant_email"] = &types.AttributeValueMemberS{Value: compositeValue(a.Tenant, a.Email)}
	}
	if a.MobilePhoneNumber != "" {
		item["tenant_phone"] = &types.AttributeValueMemberS{Value: compositeValue(a.Tenant, a.MobilePhoneNumber)}
	}
	if len(a.Certificates) > 0 {
		thumbs := make([]types.AttributeValue, len(a.Certificates))
		for i, c := range a.Certificates {
			thumbs[i] = &types.AttributeValueMemberS{Value: c.Thumbprint}
		}
		item["cert_thumbprints"] = &types.AttributeValueMemberL{Value: thumbs}
	}
	if len(a.LinkedAccounts) > 0 {
		links := make([]types.AttributeValue, len(a.LinkedAccounts))
		for i, la := range a.LinkedAccounts {
			links[i] = &types.AttributeValueMemberS{Value: compositeValue(la.ProviderName, la.ProviderAccountID)}
		}
		item["linked_keys"] = &types.AttributeValueMemberL{Value: links}
	}
	stripEmptyStrings(item)
	return item, nil
}

func (r *AccountRepo) put(ctx context.Context, a *domain.UserAccount) error {
	item, err := r.toItem(a)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AccountRepo) Add(ctx context.Context, a *domain.UserAccount) error {
	return r.put(ctx, a)
}

// Update rewrites the whole item. The aggregate owns nested collections, so
// partial update expressions buy nothing here.
func (r *AccountRepo) Update(ctx context.Context, a *domain.UserAccount) error {
	return r.put(ctx, a)
}

func (r *AccountRepo) Remove(ctx context.Context, a *domain.UserAccount) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", a.ID),
	})
	return err
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	var a domain.UserAccount
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.UserAccount, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account: %w", domain.ErrNotFound)
	}
	var a domain.UserAccount
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, tenant, username string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "tenant_username-index", "tenant_username", compositeValue(tenant, username))
}

func (r *AccountRepo) GetByUsernameAny(ctx context.Context, username string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "username-index", "username", username)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, tenant, email string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "tenant_email-index", "tenant_email", compositeValue(tenant, email))
}

func (r *AccountRepo) GetByVerificationKey(ctx context.Context, hashedKey string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "verification_key-index", "verification_key", hashedKey)
}

func (r *AccountRepo) GetByMobilePhone(ctx context.Context, tenant, phone string) (*domain.UserAccount, error) {
	return r.queryGSI(ctx, "tenant_phone-index", "tenant_phone", compositeValue(tenant, phone))
}

func (r *AccountRepo) scanContains(ctx context.Context, tenant, listAttr, value string) (*domain.UserAccount, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("tenant = :t AND contains(#l, :v)"),
		ExpressionAttributeNames: map[string]string{
			"#l": listAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: tenant},
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account: %w", domain.ErrNotFound)
	}
	var a domain.UserAccount
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByCertificate(ctx context.Context, tenant, thumbprint string) (*domain.UserAccount, error) {
	return r.scanContains(ctx, tenant, "cert_thumbprints", thumbprint)
}

func (r *AccountRepo) GetByLinkedAccount(ctx context.Context, tenant, provider, providerAccountID string) (*domain.UserAccount, error) {
	return r.scanContains(ctx, tenant, "linked_keys", compositeValue(provider, providerAccountID))
}
