// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// MovieRecord is the relational row of one clean movie.
type MovieRecord struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement:false"`
	Title               string `gorm:"not null"`
	Tagline             *string
	ReleaseDate         *time.Time `gorm:"type:date;index"`
	Genres              *string
	CollectionName      *string  `gorm:"index"`
	OriginalLanguage    *string  `gorm:"size:16"`
	BudgetMUSD          *float64 `gorm:"column:budget_musd"`
	RevenueMUSD         *float64 `gorm:"column:revenue_musd"`
	ProductionCompanies *string
	ProductionCountries *string
	VoteCount           *float64
	VoteAverage         *float64
	Popularity          *float64
	Runtime             *float64
	Overview            *string
	SpokenLanguages     *string
	PosterPath          *string
	Cast                *string
	CastSize            *int64
	Director            string `gorm:"index"`
	CrewSize            *int64
	UpdatedAt           time.Time
}

func (MovieRecord) TableName() string {
	return "movies"
}

func recordFromMovie(m *model.Movie) MovieRecord {
	r := MovieRecord{
		ID:                  m.ID,
		Title:               m.Title,
		Tagline:             m.Tagline,
		Genres:              m.Genres,
		CollectionName:      m.CollectionName,
		OriginalLanguage:    m.OriginalLanguage,
		BudgetMUSD:          m.BudgetMUSD,
		RevenueMUSD:         m.RevenueMUSD,
		ProductionCompanies: m.ProductionCompanies,
		ProductionCountries: m.ProductionCountries,
		VoteCount:           m.VoteCount,
		VoteAverage:         m.VoteAverage,
		Popularity:          m.Popularity,
		Runtime:             m.Runtime,
		Overview:            m.Overview,
		SpokenLanguages:     m.SpokenLanguages,
		PosterPath:          m.PosterPath,
		Cast:                m.Cast,
		CastSize:            m.CastSize,
		Director:            m.Director,
		CrewSize:            m.CrewSize,
	}
	if m.ReleaseDate != nil {
		t := m.ReleaseDate.In(time.UTC)
		r.ReleaseDate = &t
	}
	return r
}

func (r MovieRecord) movie() *model.Movie {
	m := &model.Movie{
		ID:                  r.ID,
		Title:               r.Title,
		Tagline:             r.Tagline,
		Genres:              r.Genres,
		CollectionName:      r.CollectionName,
		OriginalLanguage:    r.OriginalLanguage,
		BudgetMUSD:          r.BudgetMUSD,
		RevenueMUSD:         r.RevenueMUSD,
		ProductionCompanies: r.ProductionCompanies,
		ProductionCountries: r.ProductionCountries,
		VoteCount:           r.VoteCount,
		VoteAverage:         r.VoteAverage,
		Popularity:          r.Popularity,
		Runtime:             r.Runtime,
		Overview:            r.Overview,
		SpokenLanguages:     r.SpokenLanguages,
		PosterPath:          r.PosterPath,
		Cast:                r.Cast,
		CastSize:            r.CastSize,
		Director:            r.Director,
		CrewSize:            r.CrewSize,
	}
	if r.ReleaseDate != nil {
		d := civil.DateOf(r.ReleaseDate.UTC())
		m.ReleaseDate = &d
	}
	return m
}
