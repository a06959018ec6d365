package application

import (
	"fmt"
	"time"
)

// notificationMail is the composed subject and HTML body of an outbound mail.
// Texts are in Polish, the operator's locale.
type notificationMail struct {
	subject string
	body    string
}

func createdMail(facilityName string, reservation Reservation, zone *time.Location) notificationMail {
	start := reservation.Start.In(zone)
	end := reservation.End.In(zone)
	return notificationMail{
		subject: fmt.Sprintf("Potwierdzenie rezerwacji w %s", facilityName),
		body: fmt.Sprintf("Twoja rezerwacja została dodana: <br>Obiekt: %s<br>Data: %s %s - %s<br>Opis: %s",
			facilityName,
			start.Format("2006-01-02"),
			start.Format("15:04"),
			end.Format("15:04"),
			reservation.Description),
	}
}

func updatedMail(facilityName string, reservation Reservation, zone *time.Location) notificationMail {
	start := reservation.Start.In(zone)
	end := reservation.End.In(zone)
	return notificationMail{
		subject: fmt.Sprintf("Zmiana rezerwacji w %s", facilityName),
		body: fmt.Sprintf("Twoja rezerwacja została zmieniona: <br>Nowa data: %s %s - %s<br>Nowy opis: %s",
			start.Format("2006-01-02"),
			start.Format("15:04"),
			end.Format("15:04"),
			reservation.Description),
	}
}

func deletedMail(facilityName string) notificationMail {
	return notificationMail{
		subject: fmt.Sprintf("Usunięcie rezerwacji w %s", facilityName),
		body:    "Twoja rezerwacja została usunięta.",
	}
}
