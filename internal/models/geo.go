package models

// LevelOfPolitics is a tier (federal, provincial, municipal) that scopes
// parties, districts and policies.
type LevelOfPolitics struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ProvinceAndTerritory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Municipality struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	ProvinceTerritoryID int64  `json:"provinceTerritoryId"`
}

type ElectoralDistrict struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	ProvinceTerritoryID int64  `json:"provinceTerritoryId"`
	LevelOfPoliticsID   int64  `json:"levelOfPoliticsId"`
}

type PostalCode struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Code                string `json:"code"`
	MunicipalityID      int64  `json:"municipalityId"`
	ElectoralDistrictID int64  `json:"electoralDistrictId"`
}

// GeoData is the nested geography view served at /geo-data
type GeoData struct {
	ProvincesAndTerritories []GeoProvince `json:"provincesAndTerritories"`
}

type GeoProvince struct {
	ID                 int64               `json:"id"`
	Name               string              `json:"name"`
	Municipalities     []GeoMunicipality   `json:"municipalities"`
	ElectoralDistricts []ElectoralDistrict `json:"electoralDistricts"`
}

type GeoMunicipality struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	ProvinceTerritoryID int64           `json:"provinceTerritoryId"`
	PostalCodes         []GeoPostalCode `json:"postalCodes"`
}

type GeoPostalCode struct {
	PostalCode
	ElectoralDistrict *ElectoralDistrict `json:"electoralDistrict"`
}

// BuildGeoData nests flat geography rows: provinces hold their
// municipalities and districts, municipalities hold their postal codes and
// each postal code carries its electoral district. Input order is kept.
func BuildGeoData(provinces []ProvinceAndTerritory, municipalities []Municipality, districts []ElectoralDistrict, postalCodes []PostalCode) GeoData {
	districtsByID := make(map[int64]ElectoralDistrict, len(districts))
	districtsByProvince := make(map[int64][]ElectoralDistrict)
	for _, d := range districts {
		districtsByID[d.ID] = d
		districtsByProvince[d.ProvinceTerritoryID] = append(districtsByProvince[d.ProvinceTerritoryID], d)
	}

	codesByMunicipality := make(map[int64][]GeoPostalCode)
	for _, pc := range postalCodes {
		gpc := GeoPostalCode{PostalCode: pc}
		if d, ok := districtsByID[pc.ElectoralDistrictID]; ok {
			gpc.ElectoralDistrict = &d
		}
		codesByMunicipality[pc.MunicipalityID] = append(codesByMunicipality[pc.MunicipalityID], gpc)
	}

	municipalitiesByProvince := make(map[int64][]GeoMunicipality)
	for _, m := range municipalities {
		codes := codesByMunicipality[m.ID]
		if codes == nil {
			codes = []GeoPostalCode{}
		}
		municipalitiesByProvince[m.ProvinceTerritoryID] = append(municipalitiesByProvince[m.ProvinceTerritoryID], GeoMunicipality{
			ID:                  m.ID,
			Name:                m.Name,
			ProvinceTerritoryID: m.ProvinceTerritoryID,
			PostalCodes:         codes,
		})
	}

	out := GeoData{ProvincesAndTerritories: make([]GeoProvince, 0, len(provinces))}
	for _, p := range provinces {
		ms := municipalitiesByProvince[p.ID]
		if ms == nil {
			ms = []GeoMunicipality{}
		}
		ds := districtsByProvince[p.ID]
		if ds == nil {
			ds = []ElectoralDistrict{}
		}
		out.ProvincesAndTerritories = append(out.ProvincesAndTerritories, GeoProvince{
			ID:                 p.ID,
			Name:               p.Name,
			Municipalities:     ms,
			ElectoralDistricts: ds,
		})
	}
	return out
}
