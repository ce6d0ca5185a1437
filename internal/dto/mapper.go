package dto

import (
	"shareit/internal/domain"
	"shareit/internal/models"
)

func (r UserCreateRequest) ToModel() *models.User {
	return &models.User{Name: r.Name, Email: r.Email}
}

func (r UserUpdateRequest) Patch() models.UserPatch {
	return models.UserPatch{Name: r.Name, Email: r.Email}
}

func (r ItemCreateRequest) ToModel() *models.Item {
	item := &models.Item{
		Name:        r.Name,
		Description: r.Description,
		RequestID:   r.RequestID,
	}
	if r.Available != nil {
		item.Available = *r.Available
	}
	return item
}

func (r ItemUpdateRequest) Patch() models.ItemPatch {
	return models.ItemPatch{Name: r.Name, Description: r.Description, Available: r.Available}
}

func (r BookingRequest) Input() domain.BookingInput {
	return domain.BookingInput{ItemID: r.ItemID, Start: r.Start.Time(), End: r.End.Time()}
}

func ToUserDto(u *models.User) *UserDto {
	if u == nil {
		return nil
	}
	return &UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToUserDtos(users []*models.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserDto(u))
	}
	return out
}

func ToItemDto(item *models.Item) *ItemDto {
	if item == nil {
		return nil
	}
	return &ItemDto{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     item.OwnerID,
		RequestID:   item.RequestID,
	}
}

func ToItemDtos(items []*models.Item) []ItemDto {
	out := make([]ItemDto, 0, len(items))
	for _, item := range items {
		out = append(out, *ToItemDto(item))
	}
	return out
}

func ToItemDetailsDto(d *models.ItemDetails) *ItemDetailsDto {
	out := &ItemDetailsDto{
		LastBooking: toBookingShort(d.LastBooking),
		NextBooking: toBookingShort(d.NextBooking),
		Comments:    ToCommentDtos(d.Comments),
	}
	if d.Item != nil {
		out.ItemDto = *ToItemDto(d.Item)
	}
	return out
}

func ToItemDetailsDtos(details []*models.ItemDetails) []ItemDetailsDto {
	out := make([]ItemDetailsDto, 0, len(details))
	for _, d := range details {
		out = append(out, *ToItemDetailsDto(d))
	}
	return out
}

func toBookingShort(b *models.Booking) *BookingShortDto {
	if b == nil {
		return nil
	}
	return &BookingShortDto{ID: b.ID, BookerID: b.BookerID, Start: Timestamp(b.Start), End: Timestamp(b.End)}
}

func ToCommentDto(c *models.Comment) *CommentDto {
	return &CommentDto{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: Timestamp(c.CreatedAt)}
}

func ToCommentDtos(comments []*models.Comment) []CommentDto {
	out := make([]CommentDto, 0, len(comments))
	for _, c := range comments {
		out = append(out, *ToCommentDto(c))
	}
	return out
}

// ToBookingDto denormalizes the linked item and booker when present.
func ToBookingDto(b *models.Booking) *BookingDto {
	return &BookingDto{
		ID:     b.ID,
		Start:  Timestamp(b.Start),
		End:    Timestamp(b.End),
		Status: b.Status,
		Item:   ToItemDto(b.Item),
		Booker: ToUserDto(b.Booker),
	}
}

// ToBookingDtos keeps the input order.
func ToBookingDtos(bookings []*models.Booking) []BookingDto {
	out := make([]BookingDto, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, *ToBookingDto(b))
	}
	return out
}

func ToItemRequestDto(r *models.ItemRequest) *ItemRequestDto {
	return &ItemRequestDto{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     Timestamp(r.CreatedAt),
		Items:       ToItemDtos(r.Items),
	}
}

func ToItemRequestDtos(reqs []*models.ItemRequest) []ItemRequestDto {
	out := make([]ItemRequestDto, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, *ToItemRequestDto(r))
	}
	return out
}
