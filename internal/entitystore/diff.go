package entitystore

import "github.com/pumprand/pump-client/internal/domain"

// diff returns the JSON names of the top-level fields that differ between a and b
func diff(a, b *domain.Coin) []string {
	var fields []string
	add := func(changed bool, name string) {
		if changed {
			fields = append(fields, name)
		}
	}

	add(a.Name != b.Name, "name")
	add(a.Symbol != b.Symbol, "symbol")
	add(a.Supply != b.Supply, "supply")
	add(a.Decimals != b.Decimals, "decimals")
	add(a.ContractAddress != b.ContractAddress, "contractAddress")
	add(a.Creator != b.Creator, "creator")
	add(a.CreatedAt != b.CreatedAt, "createdAt")
	add(a.Graduated != b.Graduated, "graduated")
	add(a.Verified != b.Verified, "verified")
	add(a.Hidden != b.Hidden, "hidden")
	add(a.WeiIn != b.WeiIn, "weiIn")
	add(!strPtrEqual(a.DeployedPool, b.DeployedPool), "deployedPool")
	add(!strPtrEqual(a.Description, b.Description), "description")
	add(!strPtrEqual(a.ImageURL, b.ImageURL), "imageUrl")
	add(!strPtrEqual(a.Twitter, b.Twitter), "twitter")
	add(!strPtrEqual(a.Website, b.Website), "website")
	add(!strPtrEqual(a.Telegram, b.Telegram), "telegram")

	return fields
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Touches reports whether the change altered any of the given fields.
// Inserts touch every field.
func (c Change) Touches(fields ...string) bool {
	if c.Inserted {
		return true
	}
	for _, f := range c.Fields {
		for _, want := range fields {
			if f == want {
				return true
			}
		}
	}
	return false
}
