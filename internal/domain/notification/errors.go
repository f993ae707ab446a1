package notification

import "servicematch/internal/pkg/apperr"

var ErrNotificationNotFound = apperr.New(apperr.KindNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")
