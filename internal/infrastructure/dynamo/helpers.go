package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// compositeValue joins tenant-scoped lookup attributes. '#' cannot appear in
// a tenant name, which config treats as an identifier, so the join is
// unambiguous.
func compositeValue(tenant, value string) string {
	return tenant + "#" + value
}

// stripEmptyStrings removes empty string attributes from a marshalled item
// so sparse GSIs (verification key, tenant_email, tenant_phone) only index
// rows that actually carry a value.
func stripEmptyStrings(item map[string]types.AttributeValue) {
	for k, v := range item {
		if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == "" {
			delete(item, k)
		}
	}
}
