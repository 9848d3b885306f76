package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeCommissionableTXT creates TXT records for commissionable discovery.
func EncodeCommissionableTXT(info *CommissionableInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyDiscriminator] = strconv.FormatUint(uint64(info.Discriminator), 10)
	txt[TXTKeyCategories] = encodeCategories(info.Categories)

	if info.Serial != "" {
		txt[TXTKeySerial] = info.Serial
	}
	if info.Brand != "" {
		txt[TXTKeyBrand] = info.Brand
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if info.DeviceName != "" {
		txt[TXTKeyDeviceName] = info.DeviceName
	}

	return txt
}

// DecodeCommissionableTXT parses TXT records from commissionable discovery.
// Only the discriminator and categories are required.
func DecodeCommissionableTXT(txt TXTRecordMap) (*CommissionableInfo, error) {
	info := &CommissionableInfo{}

	dStr, ok := txt[TXTKeyDiscriminator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDiscriminator)
	}
	d, err := strconv.ParseUint(dStr, 10, 16)
	if err != nil || d > MaxDiscriminator {
		return nil, ErrInvalidDiscriminator
	}
	info.Discriminator = uint16(d)

	catStr, ok := txt[TXTKeyCategories]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyCategories)
	}
	info.Categories, err = parseCategories(catStr)
	if err != nil {
		return nil, err
	}

	info.Serial = txt[TXTKeySerial]
	info.Brand = txt[TXTKeyBrand]
	info.Model = txt[TXTKeyModel]
	info.DeviceName = txt[TXTKeyDeviceName]

	return info, nil
}

func encodeCategories(cats []DeviceCategory) string {
	strs := make([]string, len(cats))
	for i, c := range cats {
		strs[i] = strconv.FormatUint(uint64(c), 10)
	}
	return strings.Join(strs, ",")
}

// parseCategories parses a comma-separated category string.
func parseCategories(s string) ([]DeviceCategory, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	cats := make([]DeviceCategory, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category %q", ErrInvalidTXTRecord, p)
		}
		cats = append(cats, DeviceCategory(n))
	}
	return cats, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
// A bare key is stored with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if !found && k == "" {
			continue
		}
		txt[k] = v
	}
	return txt
}
