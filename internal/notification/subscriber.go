package notification

import (
	"fmt"

	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/models"
)

// Subscribe turns domain events into feed entries.
func (l *Log) Subscribe(bus *events.Bus) error {
	handlers := map[string]interface{}{
		events.TopicBusinessCreated: func(e events.BusinessCreated) {
			l.Add(models.NewNotification{
				Title:        "Nouvelle entreprise",
				Message:      fmt.Sprintf("%s a été ajoutée.", e.Name),
				Type:         models.NotificationSuccess,
				BusinessID:   e.BusinessID,
				BusinessName: e.Name,
			})
		},
		events.TopicBusinessDeleted: func(e events.BusinessDeleted) {
			l.Add(models.NewNotification{
				Title:        "Entreprise supprimée",
				Message:      fmt.Sprintf("%s a été déplacée dans la corbeille.", e.Name),
				Type:         models.NotificationWarning,
				BusinessID:   e.BusinessID,
				BusinessName: e.Name,
			})
		},
		events.TopicBusinessRestored: func(e events.BusinessRestored) {
			l.Add(models.NewNotification{
				Title:        "Entreprise restaurée",
				Message:      fmt.Sprintf("%s a été restaurée depuis la corbeille.", e.Name),
				Type:         models.NotificationInfo,
				BusinessID:   e.BusinessID,
				BusinessName: e.Name,
			})
		},
		events.TopicBusinessPurged: func(e events.BusinessPurged) {
			l.Add(models.NewNotification{
				Title:        "Suppression définitive",
				Message:      fmt.Sprintf("%s a été supprimée définitivement.", e.Name),
				Type:         models.NotificationWarning,
				BusinessID:   e.BusinessID,
				BusinessName: e.Name,
			})
		},
		events.TopicBusinessStatusChanged: func(e events.BusinessStatusChanged) {
			if n, ok := statusNotification(e); ok {
				l.Add(n)
			}
		},
		events.TopicPaymentSucceeded: func(e events.PaymentSucceeded) {
			l.Add(models.NewNotification{
				Title:        "Paiement reçu",
				Message:      fmt.Sprintf("Paiement de %s FCFA reçu pour %s.", e.Amount.StringFixed(0), e.BusinessName),
				Type:         models.NotificationSuccess,
				BusinessID:   e.BusinessID,
				BusinessName: e.BusinessName,
			})
		},
		events.TopicPaymentFailed: func(e events.PaymentFailed) {
			l.Add(models.NewNotification{
				Title:        "Échec du paiement",
				Message:      fmt.Sprintf("Le paiement de %s a échoué : %s", e.BusinessName, e.Reason),
				Type:         models.NotificationError,
				BusinessID:   e.BusinessID,
				BusinessName: e.BusinessName,
			})
		},
	}
	for topic, fn := range handlers {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}

func statusNotification(e events.BusinessStatusChanged) (models.NewNotification, bool) {
	n := models.NewNotification{BusinessID: e.BusinessID, BusinessName: e.Name}
	switch {
	case e.OldStatus == e.NewStatus:
		return n, false
	case e.NewStatus == models.StatusSuspended:
		n.Title = "Entreprise suspendue"
		n.Message = fmt.Sprintf("%s a été suspendue pour non-paiement.", e.Name)
		n.Type = models.NotificationWarning
	case e.OldStatus == models.StatusSuspended && e.NewStatus == models.StatusActive:
		n.Title = "Entreprise réactivée"
		n.Message = fmt.Sprintf("%s a été réactivée après paiement.", e.Name)
		n.Type = models.NotificationSuccess
	case e.NewStatus == models.StatusActive:
		n.Title = "Entreprise activée"
		n.Message = fmt.Sprintf("%s est maintenant active.", e.Name)
		n.Type = models.NotificationInfo
	default:
		n.Title = "Entreprise désactivée"
		n.Message = fmt.Sprintf("%s est maintenant inactive.", e.Name)
		n.Type = models.NotificationInfo
	}
	return n, true
}
