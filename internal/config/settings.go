package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/viper"

	perr "github.com/mithrel/topviews/internal/errors"
)

// Settings is the typed snapshot of a loaded configuration
type Settings struct {
	PageSize        int    `mapstructure:"page_size" validate:"min=1,max=1000"`
	NamespaceSample int    `mapstructure:"namespace_sample" validate:"min=0,max=50"`
	HTTPAddr        string `mapstructure:"http_addr" validate:"required,hostname_port"`

	Defaults struct {
		Project   string   `mapstructure:"project" validate:"required,hostname_rfc1123"`
		Platform  string   `mapstructure:"platform" validate:"oneof=all-access desktop mobile-web mobile-app"`
		DateRange string   `mapstructure:"date_range" validate:"oneof=last-month yesterday"`
		Excludes  []string `mapstructure:"excludes"`
	} `mapstructure:"defaults"`

	Search struct {
		Mode string `mapstructure:"mode" validate:"oneof=regex substring fuzzy"`
	} `mapstructure:"search"`

	API struct {
		PageviewsURL string        `mapstructure:"pageviews_url" validate:"required,url"`
		WikiAPI      string        `mapstructure:"wiki_api" validate:"required,contains={project}"`
		UserAgent    string        `mapstructure:"user_agent" validate:"required"`
		Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	} `mapstructure:"api"`

	Sites struct {
		Extra []string `mapstructure:"extra" validate:"dive,hostname_rfc1123"`
	} `mapstructure:"sites"`

	Cache struct {
		Backend string `mapstructure:"backend" validate:"oneof=memory sqlite off"`
	} `mapstructure:"cache"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error off disabled"`
		Format string `mapstructure:"format" validate:"oneof=console json"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
}

// FromViper reads every known key into Settings
func FromViper(v *viper.Viper) Settings {
	var s Settings
	s.PageSize = v.GetInt("page_size")
	s.NamespaceSample = v.GetInt("namespace_sample")
	s.HTTPAddr = strings.TrimSpace(v.GetString("http_addr"))

	s.Defaults.Project = strings.ToLower(strings.TrimSpace(v.GetString("defaults.project")))
	s.Defaults.Platform = strings.TrimSpace(v.GetString("defaults.platform"))
	s.Defaults.DateRange = strings.TrimSpace(v.GetString("defaults.date_range"))
	s.Defaults.Excludes = v.GetStringSlice("defaults.excludes")

	s.Search.Mode = strings.ToLower(strings.TrimSpace(v.GetString("search.mode")))

	s.API.PageviewsURL = strings.TrimSpace(v.GetString("api.pageviews_url"))
	s.API.WikiAPI = strings.TrimSpace(v.GetString("api.wiki_api"))
	s.API.UserAgent = v.GetString("api.user_agent")
	s.API.Timeout = v.GetDuration("api.timeout")

	s.Sites.Extra = v.GetStringSlice("sites.extra")
	s.Cache.Backend = strings.ToLower(strings.TrimSpace(v.GetString("cache.backend")))

	s.Log.Level = strings.ToLower(strings.TrimSpace(v.GetString("log.level")))
	s.Log.Format = strings.ToLower(strings.TrimSpace(v.GetString("log.format")))
	s.Log.File = v.GetString("log.file")
	return s
}

// CheckConfigValidity validates the loaded configuration and reports every
// violation at once.
func CheckConfigValidity(v *viper.Viper) error {
	return FromViper(v).Validate()
}

// Validate checks s against its struct tags
func (s Settings) Validate() error {
	svc := validatorSvc()
	err := svc.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid configuration")
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, errors.New(keyOf(fe)+": "+fe.Translate(svc.trans)))
	}
	return perr.Wrap(errors.Join(errs...), perr.ErrorCodeInvalidArgument, "invalid configuration")
}

// keyOf turns "Settings.defaults.project" into "defaults.project"
func keyOf(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexByte(ns, '['); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

type validatorBundle struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	vOnce sync.Once
	vSvc  validatorBundle
)

func validatorSvc() validatorBundle {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterTranslation("min", trans,
			func(ut ut.Translator) error { return ut.Add("min", "{0} must be at least {1}", true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("min", fe.Field(), fe.Param())
				return msg
			},
		)
		_ = v.RegisterTranslation("max", trans,
			func(ut ut.Translator) error { return ut.Add("max", "{0} must be at most {1}", true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("max", fe.Field(), fe.Param())
				return msg
			},
		)

		vSvc = validatorBundle{v: v, trans: trans}
	})
	return vSvc
}
