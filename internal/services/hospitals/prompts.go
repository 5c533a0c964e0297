package hospitals

import "fmt"

const systemPrompt = "You are a web-connected data model that must return only structured JSON. " +
	"Given a city/region and a medical condition, find and summarize hospitals in that locality " +
	"(target within ~30 miles of the city center) with publicly available or estimated cash/self-pay prices " +
	"for the given condition. Each object should include: name, address, phone, url, latitude, longitude, " +
	"price_usd, price_is_estimate, and notes. Output strictly a JSON array."

func userPrompt(locality, condition string) string {
	return fmt.Sprintf("locality: %s\n"+
		"condition: %s\n\n"+
		"Constraints:\n"+
		"- Prefer hospitals in the named locality and adjacent municipalities (about 30 miles).\n"+
		"- If exact cash/self-pay prices are unavailable, estimate sensibly and mark price_is_estimate=true with notes.\n"+
		"- Include latitude/longitude if available (helps with distance checks).\n"+
		"- Output strictly a JSON array of hospital objects with the requested fields and no extra commentary.",
		locality, condition)
}
