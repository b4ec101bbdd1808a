package httpapi

import (
	"strconv"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func principalFor(subject string) models.Principal { return models.Principal{Subject: subject} }
