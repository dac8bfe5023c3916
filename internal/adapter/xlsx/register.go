package xlsx

import (
	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/port/source"
)

func init() {
	source.Register(kind, func(cfg config.Source) (source.Source, error) {
		return New(cfg)
	})
}
