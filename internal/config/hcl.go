package config

import (
	"github.com/hashicorp/hcl/v2/hclsimple"

	"basket-rules/internal/errors"
)

// hclFile mirrors Config for HCL decoding. Every block and attribute is
// optional; only those present override the defaults.
type hclFile struct {
	Version   *string       `hcl:"version,optional"`
	Input     *hclInput     `hcl:"input,block"`
	Mining    *hclMining    `hcl:"mining,block"`
	Recommend *hclRecommend `hcl:"recommend,block"`
	Output    *hclOutput    `hcl:"output,block"`
	Store     *hclStore     `hcl:"store,block"`
	Server    *hclServer    `hcl:"server,block"`
	Logging   *hclLogging   `hcl:"logging,block"`
}

type hclInput struct {
	Path        *string `hcl:"path,optional"`
	DateLayout  *string `hcl:"date_layout,optional"`
	Delimiter   *string `hcl:"delimiter,optional"`
	SkipInvalid *bool   `hcl:"skip_invalid,optional"`
}

type hclMining struct {
	MinSupport   *float64 `hcl:"min_support,optional"`
	MaxLen       *int     `hcl:"max_len,optional"`
	Metric       *string  `hcl:"metric,optional"`
	MinThreshold *float64 `hcl:"min_threshold,optional"`
}

type hclRecommend struct {
	Count *int `hcl:"count,optional"`
}

type hclOutput struct {
	Format    *string `hcl:"format,optional"`
	Precision *int    `hcl:"precision,optional"`
	Limit     *int    `hcl:"limit,optional"`
	NoColor   *bool   `hcl:"no_color,optional"`
}

type hclStore struct {
	Path *string `hcl:"path,optional"`
}

type hclServer struct {
	Addr *string `hcl:"addr,optional"`
}

type hclLogging struct {
	Level       *string `hcl:"level,optional"`
	Format      *string `hcl:"format,optional"`
	Output      *string `hcl:"output,optional"`
	Development *bool   `hcl:"development,optional"`
}

func decodeHCL(path string, src []byte, c *Config) error {
	var f hclFile
	if err := hclsimple.Decode(path, src, nil, &f); err != nil {
		return errors.Config("parse HCL config", err).WithContext("path", path)
	}

	set(&c.Version, f.Version)
	if in := f.Input; in != nil {
		set(&c.Input.Path, in.Path)
		set(&c.Input.DateLayout, in.DateLayout)
		set(&c.Input.Delimiter, in.Delimiter)
		set(&c.Input.SkipInvalid, in.SkipInvalid)
	}
	if m := f.Mining; m != nil {
		set(&c.Mining.MinSupport, m.MinSupport)
		set(&c.Mining.MaxLen, m.MaxLen)
		set(&c.Mining.Metric, m.Metric)
		set(&c.Mining.MinThreshold, m.MinThreshold)
	}
	if r := f.Recommend; r != nil {
		set(&c.Recommend.Count, r.Count)
	}
	if o := f.Output; o != nil {
		set(&c.Output.Format, o.Format)
		set(&c.Output.Precision, o.Precision)
		set(&c.Output.Limit, o.Limit)
		set(&c.Output.NoColor, o.NoColor)
	}
	if s := f.Store; s != nil {
		set(&c.Store.Path, s.Path)
	}
	if s := f.Server; s != nil {
		set(&c.Server.Addr, s.Addr)
	}
	if l := f.Logging; l != nil {
		set(&c.Logging.Level, l.Level)
		set(&c.Logging.Format, l.Format)
		set(&c.Logging.Output, l.Output)
		set(&c.Logging.Development, l.Development)
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
