package record

import "golang.org/x/text/unicode/norm"

// NormalizeTags returns a copy of t with every string value NFC normalized.
//
// Tag values form the remote ledger's query vocabulary; without a canonical
// form, composed and decomposed spellings of the same value would index as
// different lineages.
func NormalizeTags(t Tags) Tags {
	out := t
	out.App = norm.NFC.String(t.App)
	out.ContentType = norm.NFC.String(t.ContentType)
	out.DatasetName = norm.NFC.String(t.DatasetName)
	out.Split = norm.NFC.String(t.Split)
	out.Version = norm.NFC.String(t.Version)
	out.Owner = norm.NFC.String(t.Owner)
	out.CreatedAt = norm.NFC.String(t.CreatedAt)
	if len(t.Extra) > 0 {
		out.Extra = make(map[string]string, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[norm.NFC.String(k)] = norm.NFC.String(v)
		}
	}
	return out
}
