package sqlite

import (
	"github.com/couchcryptid/nivo-observations/internal/domain"
)

// JSON column shapes. They keep the field names of the records written by the
// first version of the app so old rows decode unchanged.

type storedIndices struct {
	Keys    []string       `json:"keys"`
	Details *storedDetails `json:"details,omitempty"`
}

type storedDetails struct {
	Avalanche *storedAvalanche `json:"avalanche,omitempty"`
}

type storedAvalanche struct {
	Type          string `json:"type,omitempty"`
	Cassure       string `json:"cassure,omitempty"`
	Tailles       []int  `json:"tailles,omitempty"`
	RemoteTrigger bool   `json:"declenchementARemote,omitempty"`
}

type storedPhoto struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Comment  string `json:"comment,omitempty"`
}

type storedTest struct {
	Type    string `json:"type"`
	Score   string `json:"score"`
	DepthCm int    `json:"depthCm"`
}

type storedProfile struct {
	StabilityTests []storedTest `json:"stabilityTests"`
	ProfileImage   *storedPhoto `json:"profileImage,omitempty"`
}

func toStoredIndices(set domain.IndiceSet) storedIndices {
	s := storedIndices{Keys: make([]string, 0, len(set.Keys))}
	for _, k := range set.Keys {
		s.Keys = append(s.Keys, string(k))
	}
	if av := set.Avalanche; av != nil {
		s.Details = &storedDetails{Avalanche: &storedAvalanche{
			Type:          string(av.Type),
			Cassure:       string(av.Break),
			Tailles:       av.Sizes,
			RemoteTrigger: av.RemoteTrigger,
		}}
	}
	return s
}

func (s storedIndices) toDomain() domain.IndiceSet {
	set := domain.IndiceSet{Keys: domain.NormalizeIndices(s.Keys)}
	if s.Details == nil || s.Details.Avalanche == nil || !set.Has(domain.IndiceAvalanche) {
		return set
	}
	av := s.Details.Avalanche
	set.Avalanche = &domain.AvalancheDetails{
		Type:          domain.ParseAvalancheType(av.Type),
		Break:         domain.ParseAvalancheBreak(av.Cassure),
		Sizes:         domain.NormalizeAvalancheSizes(av.Tailles),
		RemoteTrigger: av.RemoteTrigger,
	}
	return set
}

func orientationKeys(in []domain.Orientation) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		out = append(out, string(o))
	}
	return out
}

func observableKeys(in []domain.Observable) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		out = append(out, string(o))
	}
	return out
}

func toStoredPhotos(in []domain.Photo) []storedPhoto {
	out := make([]storedPhoto, 0, len(in))
	for _, p := range in {
		out = append(out, storedPhoto{URL: p.URL, PublicID: p.PublicID, Comment: p.Comment})
	}
	return out
}

func fromStoredPhotos(in []storedPhoto) []domain.Photo {
	out := make([]domain.Photo, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Photo{URL: p.URL, PublicID: p.PublicID, Comment: p.Comment})
	}
	return out
}

func toStoredProfile(p domain.ProfileTests) storedProfile {
	s := storedProfile{StabilityTests: make([]storedTest, 0, len(p.StabilityTests))}
	for _, t := range p.StabilityTests {
		s.StabilityTests = append(s.StabilityTests, storedTest{Type: t.Type, Score: t.Score, DepthCm: t.DepthCm})
	}
	if p.ProfileImage != nil {
		s.ProfileImage = &storedPhoto{URL: p.ProfileImage.URL, PublicID: p.ProfileImage.PublicID, Comment: p.ProfileImage.Comment}
	}
	return s
}

func (s storedProfile) toDomain() domain.ProfileTests {
	p := domain.ProfileTests{StabilityTests: make([]domain.StabilityTest, 0, len(s.StabilityTests))}
	for _, t := range s.StabilityTests {
		p.StabilityTests = append(p.StabilityTests, domain.StabilityTest{Type: t.Type, Score: t.Score, DepthCm: t.DepthCm})
	}
	if s.ProfileImage != nil {
		p.ProfileImage = &domain.Photo{URL: s.ProfileImage.URL, PublicID: s.ProfileImage.PublicID, Comment: s.ProfileImage.Comment}
	}
	return p
}
