package mailer

import (
	"html/template"
	"strings"

	"diario/internal/core"
)

var commentTmpl = template.Must(template.New("comment").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Nuevo comentario en «{{.EntryTitle}}»</h2>
  <p><strong>{{.CommenterName}}</strong> ha comentado tu instante:</p>
  <blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #555;">
    {{.Excerpt}}
  </blockquote>
  <p><a href="{{.Link}}">Ver el comentario</a></p>
</div>
`))

var replyTmpl = template.Must(template.New("reply").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>{{.CommenterName}} ha respondido a tu comentario</h2>
  <p>Tu comentario en «{{.EntryTitle}}»:</p>
  <blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #555;">
    {{.ParentExcerpt}}
  </blockquote>
  <p>La respuesta:</p>
  <blockquote style="border-left: 3px solid #8abda8; padding-left: 12px; color: #333;">
    {{.Excerpt}}
  </blockquote>
  <p><a href="{{.Link}}">Ver la conversación</a></p>
</div>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Confirma tu suscripción</h2>
  <p>Has pedido recibir el boletín de Diario de un Instante. Confirma tu
  dirección para completar la suscripción:</p>
  <p><a href="{{.ConfirmLink}}">Confirmar suscripción</a></p>
  <p style="color: #888; font-size: 12px;">Si no has sido tú, ignora este
  mensaje y no volveremos a escribirte.</p>
</div>
`))

var issueTmpl = template.Must(template.New("issue").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>{{.Subject}}</h2>
  <div style="white-space: pre-line;">{{.Body}}</div>
  <hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;">
  <p style="color: #888; font-size: 12px;">Recibes este boletín porque
  confirmaste tu suscripción.
  <a href="{{.UnsubscribeLink}}">Darse de baja</a></p>
</div>
`))

func renderCommentMail(mail core.CommentMail) (string, error) {
	var b strings.Builder
	if err := commentTmpl.Execute(&b, mail); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderReplyMail(mail core.CommentMail) (string, error) {
	var b strings.Builder
	if err := replyTmpl.Execute(&b, mail); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderConfirmationMail(confirmLink string) (string, error) {
	var b strings.Builder
	data := struct{ ConfirmLink string }{ConfirmLink: confirmLink}
	if err := confirmationTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderIssueMail(subject, body, unsubscribeLink string) (string, error) {
	var b strings.Builder
	data := struct{ Subject, Body, UnsubscribeLink string }{
		Subject:         subject,
		Body:            body,
		UnsubscribeLink: unsubscribeLink,
	}
	if err := issueTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
